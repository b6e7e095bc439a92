package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/scanarr/internal/services"
	"github.com/desertthunder/scanarr/internal/tasks"
)

// missingBarcodeBody is the plain-text reply to a submit without a barcode.
const missingBarcodeBody = "error: No barcode provided"

const checkTimeout = 15 * time.Second

// Importer starts an import and returns its progress events.
//
// The channel must be closed after the terminal event.
type Importer interface {
	Stream(ctx context.Context, barcode string) <-chan tasks.ProgressEvent
}

// Options contains the collaborators served by [NewRouter].
type Options struct {
	Importer Importer
	Checker  services.ConfigChecker
	Index    http.Handler // optional page served at "/"
	Logger   *log.Logger
}

// NewRouter registers every scanarr route on a [BasicRouter] with request id, logging and
// panic recovery middleware.
func NewRouter(opts Options) *BasicRouter {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	r := NewBasicRouter()
	r.Use(RequestID(), Logging(logger), Recover(logger))

	if opts.Index != nil {
		r.Handle(http.MethodGet, "/{$}", opts.Index)
	}
	r.Handle(http.MethodPost, "/submit", NewImportHandler(opts.Importer, logger))
	r.Handle(http.MethodGet, "/check", NewCheckHandler(opts.Checker, logger))
	r.Handler(HealthHandler{Logger: logger})

	return r
}

// ImportHandler serves POST /submit: it runs one import for the form field "barcode"
// and streams its progress.
type ImportHandler struct {
	importer Importer
	logger   *log.Logger
}

// NewImportHandler creates an ImportHandler.
func NewImportHandler(importer Importer, logger *log.Logger) *ImportHandler {
	return &ImportHandler{importer: importer, logger: logger}
}

// ServeHTTP validates the barcode before any streaming starts.
//
// The workflow context is detached from the request, so a client that disconnects
// does not interrupt outstanding Lidarr calls.
func (h *ImportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	barcode := strings.TrimSpace(r.FormValue("barcode"))
	if barcode == "" {
		logWriteError(h.logger, writeText(w, http.StatusBadRequest, missingBarcodeBody))
		return
	}

	logger := h.logger.With("barcode", barcode, "request_id", RequestIDFromContext(r.Context()))
	logger.Info("import requested")

	events := h.importer.Stream(context.WithoutCancel(r.Context()), barcode)
	sent, err := NewStreamWriter(w).Drain(events)
	if err != nil {
		logger.Warn("client went away during import", "sent", sent, "error", err)
		return
	}
	logger.Debug("import stream finished", "events", sent)
}

// CheckHandler serves GET /check with the Lidarr configuration report as JSON.
//
// It answers 200 when every probe passed and 503 otherwise.
type CheckHandler struct {
	checker services.ConfigChecker
	logger  *log.Logger
}

// NewCheckHandler creates a CheckHandler.
func NewCheckHandler(checker services.ConfigChecker, logger *log.Logger) *CheckHandler {
	return &CheckHandler{checker: checker, logger: logger}
}

func (h *CheckHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	report := h.checker.CheckConfig(ctx)
	status := http.StatusOK
	if !report.OK {
		status = http.StatusServiceUnavailable
		for _, p := range report.Failures() {
			h.logger.Warn("configuration check failed", "probe", p.Name, "error", p.Error)
		}
	}
	logWriteError(h.logger, writeJSON(w, status, report))
}

// HealthHandler reports liveness on /health.
type HealthHandler struct {
	Logger *log.Logger // optional, receives response write failures
}

// Routes implements [Handler].
func (HealthHandler) Routes() []string {
	return []string{"/health"}
}

func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logWriteError(h.Logger, writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}))
}

func writeText(w http.ResponseWriter, status int, body string) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if _, err := io.WriteString(w, body); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

// logWriteError reports a failed response write at debug level.
func logWriteError(logger *log.Logger, err error) {
	if err == nil || logger == nil {
		return
	}
	logger.Debug("response write failed", "error", err)
}
