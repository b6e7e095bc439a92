package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/desertthunder/scanarr/internal/server"
	"github.com/desertthunder/scanarr/internal/shared"
	"github.com/desertthunder/scanarr/internal/web"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

// Serve starts the HTTP server and blocks until ctx is cancelled.
//
// The Lidarr configuration is probed once at startup; failures are logged and do not stop the server.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.Validate(); err != nil {
		return err
	}
	r.withHistory()

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	handler, err := r.newHandler()
	if err != nil {
		return err
	}

	r.logStartupCheck(ctx)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := server.NewHTTPServer(addr, handler)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	url := browserURL(listener.Addr())
	r.logger.Info("scanarr listening", "addr", listener.Addr().String(), "url", url)

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// newHandler wires the index page, the import stream and the check endpoint.
func (r *Runner) newHandler() (http.Handler, error) {
	index, err := web.NewIndexHandler(web.PageData{
		SettleDelay: r.engine.SettleDelay(),
		LidarrURL:   r.config.Lidarr.URL,
	})
	if err != nil {
		return nil, err
	}

	return server.NewRouter(server.Options{
		Importer: r.engine,
		Checker:  r.lidarr,
		Index:    index,
		Logger:   shared.WithLogger(r.logger, "component", "http"),
	}), nil
}

func (r *Runner) logStartupCheck(ctx context.Context) {
	report := r.lidarr.CheckConfig(ctx)
	for _, probe := range report.Probes {
		if probe.OK {
			r.logger.Info(probe.Summary())
		} else {
			r.logger.Warn(probe.Summary(), "endpoint", probe.Endpoint)
		}
	}
}

// browserURL returns a local URL for addr, replacing unspecified hosts with localhost.
func browserURL(addr net.Addr) string {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return "http://" + addr.String()
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
