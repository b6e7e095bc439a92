package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/scanarr/internal/services"
	"github.com/desertthunder/scanarr/internal/shared"
	"github.com/desertthunder/scanarr/internal/tasks"
	tu "github.com/desertthunder/scanarr/internal/testing"
)

// stubImporter replays a fixed list of events and remembers what it was asked.
type stubImporter struct {
	mu       sync.Mutex
	events   []tasks.ProgressEvent
	barcodes []string
}

func (s *stubImporter) Stream(ctx context.Context, barcode string) <-chan tasks.ProgressEvent {
	s.mu.Lock()
	s.barcodes = append(s.barcodes, barcode)
	s.mu.Unlock()

	out := make(chan tasks.ProgressEvent, len(s.events))
	for _, ev := range s.events {
		out <- ev
	}
	close(out)
	return out
}

type stubChecker struct {
	report services.ConfigReport
}

func (s stubChecker) CheckConfig(ctx context.Context) services.ConfigReport {
	return s.report
}

func postForm(h http.Handler, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestImportHandler(t *testing.T) {
	t.Run("Missing Barcode", func(t *testing.T) {
		importer := &stubImporter{}
		router := NewRouter(Options{Importer: importer, Checker: stubChecker{}})

		for _, values := range []url.Values{{}, {"barcode": {""}}, {"barcode": {"   "}}} {
			rec := postForm(router, values)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
				t.Errorf("expected text/plain, got %s", ct)
			}
			if rec.Body.String() != "error: No barcode provided" {
				t.Errorf("unexpected body %q", rec.Body.String())
			}
		}
		if len(importer.barcodes) != 0 {
			t.Error("expected no import to start")
		}
	})

	t.Run("Streams Events", func(t *testing.T) {
		importer := &stubImporter{events: []tasks.ProgressEvent{
			{Status: "🔍 Processing...", Progress: 5},
			{Status: "❌ Error: No release found for barcode 0000000000000", Progress: 100},
		}}
		router := NewRouter(Options{Importer: importer, Checker: stubChecker{}})

		rec := postForm(router, url.Values{"barcode": {" 0000000000000 "}})

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != StreamContentType {
			t.Errorf("expected %s, got %s", StreamContentType, ct)
		}
		if rec.Header().Get(RequestIDHeader) == "" {
			t.Error("expected a request id header")
		}
		if !rec.Flushed {
			t.Error("expected flushes to pass through the middleware")
		}

		want := `{"status":"🔍 Processing...","progress":5}` + "\n\n" +
			`{"status":"❌ Error: No release found for barcode 0000000000000","progress":100}` + "\n\n"
		if rec.Body.String() != want {
			t.Errorf("got %q, want %q", rec.Body.String(), want)
		}
		if len(importer.barcodes) != 1 || importer.barcodes[0] != "0000000000000" {
			t.Errorf("expected trimmed barcode, got %v", importer.barcodes)
		}
	})

	t.Run("Multipart Form", func(t *testing.T) {
		importer := &stubImporter{events: []tasks.ProgressEvent{{Status: "done", Progress: 100}}}
		router := NewRouter(Options{Importer: importer, Checker: stubChecker{}})

		var body bytes.Buffer
		boundary := "scanarrboundary"
		body.WriteString("--" + boundary + "\r\nContent-Disposition: form-data; name=\"barcode\"\r\n\r\n123\r\n--" + boundary + "--\r\n")
		req := httptest.NewRequest(http.MethodPost, "/submit", &body)
		req.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK || len(importer.barcodes) != 1 || importer.barcodes[0] != "123" {
			t.Errorf("expected multipart barcode to be read, got %d %v", rec.Code, importer.barcodes)
		}
	})

	t.Run("Detached Context", func(t *testing.T) {
		var got context.Context
		importer := importerFunc(func(ctx context.Context, barcode string) <-chan tasks.ProgressEvent {
			got = ctx
			out := make(chan tasks.ProgressEvent, 1)
			out <- tasks.ProgressEvent{Status: "done", Progress: 100}
			close(out)
			return out
		})

		ctx, cancel := context.WithCancel(context.Background())
		req := httptest.NewRequest(http.MethodPost, "/submit?barcode=42", nil).WithContext(ctx)
		cancel()
		NewImportHandler(importer, log.New(io.Discard)).ServeHTTP(httptest.NewRecorder(), req)

		if got == nil || got.Err() != nil {
			t.Error("expected the import context to survive request cancellation")
		}
	})
}

type importerFunc func(ctx context.Context, barcode string) <-chan tasks.ProgressEvent

func (f importerFunc) Stream(ctx context.Context, barcode string) <-chan tasks.ProgressEvent {
	return f(ctx, barcode)
}

func TestCheckHandler(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		report := services.ConfigReport{OK: true, Probes: []services.ConfigProbe{{Name: "Root folders", Endpoint: "/rootfolder", StatusCode: 200, Reachable: true, OK: true}}}
		router := NewRouter(Options{Importer: &stubImporter{}, Checker: stubChecker{report: report}})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/check", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		var got services.ConfigReport
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if !got.OK || len(got.Probes) != 1 {
			t.Errorf("unexpected report %+v", got)
		}
	})

	t.Run("Failure", func(t *testing.T) {
		report := services.ConfigReport{Probes: []services.ConfigProbe{{Name: "Quality profiles", Reachable: true, StatusCode: 500, Error: "boom"}}}
		router := NewRouter(Options{Importer: &stubImporter{}, Checker: stubChecker{report: report}})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/check", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", rec.Code)
		}
	})
}

func TestResponseWriteFailures(t *testing.T) {
	newLogger := func(buf *bytes.Buffer) *log.Logger {
		logger := log.New(buf)
		logger.SetLevel(log.DebugLevel)
		return logger
	}

	t.Run("Check", func(t *testing.T) {
		var buf bytes.Buffer
		report := services.ConfigReport{OK: true}
		h := NewCheckHandler(stubChecker{report: report}, newLogger(&buf))

		w := &failingWriter{ResponseRecorder: httptest.NewRecorder()}
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/check", nil))

		if !strings.Contains(buf.String(), "response write failed") || !strings.Contains(buf.String(), "connection reset") {
			t.Errorf("expected write failure to be logged, got %q", buf.String())
		}
	})

	t.Run("Missing Barcode", func(t *testing.T) {
		var buf bytes.Buffer
		h := NewImportHandler(&stubImporter{}, newLogger(&buf))

		w := &failingWriter{ResponseRecorder: httptest.NewRecorder()}
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/submit", nil))

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
		if !strings.Contains(buf.String(), "response write failed") {
			t.Errorf("expected write failure to be logged, got %q", buf.String())
		}
	})

	t.Run("Health Without Logger", func(t *testing.T) {
		w := &failingWriter{ResponseRecorder: httptest.NewRecorder()}
		HealthHandler{}.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})
}

func TestRouterRoutes(t *testing.T) {
	index := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("index")) })
	router := NewRouter(Options{Importer: &stubImporter{}, Checker: stubChecker{}, Index: index})

	tc := []struct {
		method string
		path   string
		status int
	}{
		{method: http.MethodGet, path: "/", status: http.StatusOK},
		{method: http.MethodGet, path: "/health", status: http.StatusOK},
		{method: http.MethodGet, path: "/nope", status: http.StatusNotFound},
		{method: http.MethodGet, path: "/submit", status: http.StatusMethodNotAllowed},
		{method: http.MethodPost, path: "/check", status: http.StatusMethodNotAllowed},
	}

	for _, tt := range tc {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != tt.status {
			t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.status, rec.Code)
		}
	}
}

func TestMiddleware(t *testing.T) {
	t.Run("Logging", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(&buf)
		h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brew", nil))

		out := buf.String()
		if !strings.Contains(out, "path=/brew") || !strings.Contains(out, "status=418") {
			t.Errorf("expected request line, got %s", out)
		}
	})

	t.Run("RequestID Reuses Header", func(t *testing.T) {
		var seen string
		h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = RequestIDFromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if seen != "abc" || rec.Header().Get(RequestIDHeader) != "abc" {
			t.Errorf("expected request id abc, got %q", seen)
		}
	})

	t.Run("Recover", func(t *testing.T) {
		h := Recover(log.New(io.Discard))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("kaboom")
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})
}

// TestSubmitEndToEnd drives a real engine against fake MusicBrainz and Lidarr servers.
func TestSubmitEndToEnd(t *testing.T) {
	mb := tu.NewFakeMusicBrainz(t, map[string][]tu.Release{
		"0602547924032": {{ID: "rel-1", Title: "OK Computer", ReleaseGroupID: "rg-okc", ArtistName: "Radiohead", ArtistID: "mb-radiohead"}},
	})
	lidarr := tu.NewFakeLidarr(t, "test-key")

	cfg := shared.DefaultConfig()
	cfg.Lidarr.URL = lidarr.URL()
	cfg.Lidarr.APIKey = "test-key"
	cfg.MusicBrainz.URL = mb.URL()
	cfg.MusicBrainz.RateLimit = 0

	lidarrSvc := services.NewLidarrService(cfg.Lidarr, nil)
	var waited []time.Duration
	engine := tasks.NewImportEngine(
		services.NewMusicBrainzService(cfg.MusicBrainz, nil),
		lidarrSvc,
		tasks.EngineOpts{
			Artist: tasks.ArtistDefaultsFrom(cfg.Lidarr),
			Wait: func(ctx context.Context, d time.Duration) error {
				waited = append(waited, d)
				return nil
			},
		},
	)

	srv := httptest.NewServer(NewRouter(Options{Importer: engine, Checker: lidarrSvc}))
	defer srv.Close()

	t.Run("New Artist And Album", func(t *testing.T) {
		resp, err := http.PostForm(srv.URL+"/submit", url.Values{"barcode": {"0602547924032"}})
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		events, err := DecodeFrames(body)
		if err != nil {
			t.Fatalf("failed to decode stream: %v", err)
		}

		var progress []int
		for _, ev := range events {
			progress = append(progress, ev.Progress)
		}
		if len(progress) != 6 || progress[0] != 5 || progress[5] != 100 {
			t.Fatalf("expected six checkpoints, got %v", progress)
		}
		if events[5].Status != "✅ Album 'OK Computer' added and monitored!" {
			t.Errorf("unexpected final status %q", events[5].Status)
		}

		artists := lidarr.Bodies("POST /api/v1/artist")
		if len(artists) != 1 || artists[0]["monitorNewItems"] != "none" {
			t.Errorf("expected one artist added with monitorNewItems none, got %v", artists)
		}
		albums := lidarr.Bodies("POST /api/v1/album")
		if len(albums) != 1 || albums[0]["monitored"] != true {
			t.Errorf("expected one monitored album added, got %v", albums)
		}
		if len(waited) != 1 || waited[0] != tasks.DefaultSettleDelay {
			t.Errorf("expected a single default settle wait, got %v", waited)
		}
	})

	t.Run("Unknown Barcode", func(t *testing.T) {
		resp, err := http.PostForm(srv.URL+"/submit", url.Values{"barcode": {"0000000000000"}})
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		events, _ := DecodeFrames(body)
		if len(events) != 2 {
			t.Fatalf("expected 2 events, got %+v", events)
		}
		if events[1].Status != "❌ Error: No release found for barcode 0000000000000" || events[1].Progress != 100 {
			t.Errorf("unexpected failure event %+v", events[1])
		}
	})

	t.Run("Check", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/check")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected a passing configuration check, got %d", resp.StatusCode)
		}
	})
}
