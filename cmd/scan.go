package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/scanarr/internal/server"
	"github.com/desertthunder/scanarr/internal/shared"
	"github.com/urfave/cli/v3"
)

// Scan runs one import and prints every progress event as it arrives.
//
// With --json each event is written as the frame the HTTP stream would send.
// A failed import returns its error so the process exits non-zero.
func (r *Runner) Scan(ctx context.Context, cmd *cli.Command) error {
	barcode := strings.TrimSpace(cmd.StringArg("barcode"))
	if barcode == "" {
		return shared.ErrMissingBarcode
	}
	raw := cmd.Bool("json")

	if err := r.config.Validate(); err != nil {
		return err
	}

	r.withHistory()
	r.logger.Info("starting import", "barcode", barcode)

	var failure string
	for ev := range r.engine.Stream(ctx, barcode) {
		if raw {
			frame, err := server.EncodeFrame(ev)
			if err != nil {
				return err
			}
			if _, err := r.output.Write(frame); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		} else {
			r.writePlain("[%3d%%] %s\n", ev.Progress, ev.Status)
		}
		if ev.Failed() {
			failure = ev.Status
		}
	}

	if failure != "" {
		return errors.New(failure)
	}
	return nil
}

// Resolve prints the release metadata for a barcode without changing Lidarr.
func (r *Runner) Resolve(ctx context.Context, cmd *cli.Command) error {
	barcode := strings.TrimSpace(cmd.StringArg("barcode"))
	if barcode == "" {
		return shared.ErrMissingBarcode
	}

	meta, err := r.musicbrainz.ResolveBarcode(ctx, barcode)
	if err != nil {
		return err
	}
	return r.writeJSON(meta, cmd.Bool("pretty"))
}

// Check validates the loaded configuration, then probes Lidarr and prints one line per probe.
func (r *Runner) Check(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.Validate(); err != nil {
		return err
	}

	report := r.lidarr.CheckConfig(ctx)

	if cmd.Bool("json") {
		if err := r.writeJSON(report, cmd.Bool("pretty")); err != nil {
			return err
		}
	} else {
		r.writePlainHeader("Lidarr configuration")
		for _, probe := range report.Probes {
			r.writePlain("%s\n", probe.Summary())
		}
	}

	if !report.OK {
		return fmt.Errorf("%w: %d of %d checks failed", shared.ErrInvalidConfig, len(report.Failures()), len(report.Probes))
	}
	return nil
}
