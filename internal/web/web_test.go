package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestIndexHandler(t *testing.T) {
	t.Run("Renders Form", func(t *testing.T) {
		h, err := NewIndexHandler(PageData{SettleDelay: 30 * time.Second, LidarrURL: "http://lidarr:8686"})
		if err != nil {
			t.Fatalf("failed to render index: %v", err)
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("expected html content type, got %s", ct)
		}

		body := rec.Body.String()
		for _, want := range []string{`action="/submit"`, `name="barcode"`, "<title>scanarr</title>", "30s", "http://lidarr:8686"} {
			if !strings.Contains(body, want) {
				t.Errorf("index missing %q", want)
			}
		}
	})

	t.Run("Escapes Data", func(t *testing.T) {
		h, err := NewIndexHandler(PageData{Title: "<b>scan</b>"})
		if err != nil {
			t.Fatalf("failed to render index: %v", err)
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if strings.Contains(rec.Body.String(), "<b>scan</b>") {
			t.Error("expected the title to be escaped")
		}
		if strings.Contains(rec.Body.String(), "settle in Lidarr") {
			t.Error("expected the settle hint to be omitted without a delay")
		}
	})

	t.Run("Head", func(t *testing.T) {
		h, _ := NewIndexHandler(PageData{})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/", nil))

		if rec.Body.Len() != 0 {
			t.Error("expected an empty body for HEAD")
		}
	})
}
