package shared

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

func TestErrors(t *testing.T) {
	t.Run("NotFoundError", func(t *testing.T) {
		err := fmt.Errorf("resolve: %w", &NotFoundError{Barcode: "012345678905"})

		if !errors.Is(err, ErrReleaseNotFound) {
			t.Error("expected NotFoundError to match ErrReleaseNotFound")
		}
		if IsUpstream(err) {
			t.Error("NotFoundError should not be an upstream error")
		}

		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Fatal("expected errors.As to find NotFoundError")
		}
		if got := nf.Error(); got != "No release found for barcode 012345678905" {
			t.Errorf("unexpected message %q", got)
		}
	})

	t.Run("UpstreamError Status", func(t *testing.T) {
		err := NewStatusError("lidarr", "list artists", 500, []byte("  boom \n"))

		if got := err.Error(); got != "lidarr list artists failed with status 500: boom" {
			t.Errorf("unexpected message %q", got)
		}
		if !IsUpstream(err) {
			t.Error("expected IsUpstream to be true")
		}
	})

	t.Run("UpstreamError Body Truncated", func(t *testing.T) {
		err := NewStatusError("musicbrainz", "search releases", 503, []byte(strings.Repeat("x", 500)))
		if len(err.Body) != maxErrorBody+3 {
			t.Errorf("expected truncated body of %d chars, got %d", maxErrorBody+3, len(err.Body))
		}
	})

	t.Run("UpstreamError Transport", func(t *testing.T) {
		err := NewUpstreamError("musicbrainz", "search releases", io.ErrUnexpectedEOF)

		if got := err.Error(); got != "musicbrainz search releases failed: unexpected EOF" {
			t.Errorf("unexpected message %q", got)
		}
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Error("expected the transport error to be unwrapped")
		}
		if !errors.Is(err, ErrUpstream) {
			t.Error("expected ErrUpstream to match")
		}
	})

	t.Run("Missing Barcode", func(t *testing.T) {
		if !errors.Is(ErrMissingBarcode, ErrValidation) {
			t.Error("expected ErrMissingBarcode to be a validation error")
		}
		if !strings.HasSuffix(ErrMissingBarcode.Error(), "No barcode provided") {
			t.Errorf("unexpected message %q", ErrMissingBarcode.Error())
		}
	})
}

func TestParseLevel(t *testing.T) {
	tc := []struct {
		name string
		in   string
		want log.Level
	}{
		{name: "debug", in: "debug", want: log.DebugLevel},
		{name: "mixed case", in: " WARN ", want: log.WarnLevel},
		{name: "empty", in: "", want: log.InfoLevel},
		{name: "unknown", in: "chatty", want: log.InfoLevel},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoggers(t *testing.T) {
	t.Run("NewConfiguredLogger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewConfiguredLogger(&buf, LogConfig{Level: "warn"})

		logger.Info("hidden")
		logger.Warn("shown", "barcode", "123")

		out := buf.String()
		if strings.Contains(out, "hidden") {
			t.Errorf("info line should be filtered at warn level: %s", out)
		}
		if !strings.Contains(out, "shown") || !strings.Contains(out, "barcode=123") {
			t.Errorf("expected warn line with fields, got %s", out)
		}
	})

	t.Run("NewFileLogger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "scanarr.log")
		logger, err := NewFileLogger(path, LogConfig{Level: "info", MaxSizeMB: 1})
		if err != nil {
			t.Fatalf("failed to create file logger: %v", err)
		}

		logger.Info("import started", "barcode", "42")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(data), "msg=\"import started\"") {
			t.Errorf("expected logfmt line in file, got %s", data)
		}
	})

	t.Run("WithLogger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "component", "engine")
		logger.Info("hello")

		if !strings.Contains(buf.String(), "component=engine") {
			t.Errorf("expected child logger fields, got %s", buf.String())
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique IDs")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("expected a valid uuid, got %q: %v", a, err)
	}
}

func TestBrowserCommand(t *testing.T) {
	const url = "http://localhost:5000"

	tc := []struct {
		goos string
		name string
	}{
		{goos: "darwin", name: "open"},
		{goos: "linux", name: "xdg-open"},
		{goos: "windows", name: "rundll32"},
	}

	for _, tt := range tc {
		t.Run(tt.goos, func(t *testing.T) {
			name, args, err := browserCommand(tt.goos, url)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if name != tt.name {
				t.Errorf("expected %s, got %s", tt.name, name)
			}
			if args[len(args)-1] != url {
				t.Errorf("expected url as last argument, got %v", args)
			}
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		if _, _, err := browserCommand("plan9", url); !errors.Is(err, ErrNotImplemented) {
			t.Errorf("expected ErrNotImplemented, got %v", err)
		}
	})
}
