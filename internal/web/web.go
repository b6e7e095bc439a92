// Package web serves the browser front end of scanarr.
//
// The index page is a single embedded template with a barcode form. Submitting it
// posts to /submit and renders the progress stream as it arrives: each frame is one
// JSON object {"status", "progress"} terminated by a blank line, and the feed ends
// with the first frame at progress 100.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"
)

//go:embed templates/*.html
var templateFiles embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFiles, "templates/index.html"))

// PageData holds the values rendered into the index page.
type PageData struct {
	Title       string
	SubmitPath  string
	SettleDelay time.Duration
	LidarrURL   string
}

// IndexHandler renders the index page once and serves the cached bytes.
type IndexHandler struct {
	page []byte
}

// NewIndexHandler renders the index template with data.
func NewIndexHandler(data PageData) (*IndexHandler, error) {
	if data.Title == "" {
		data.Title = "scanarr"
	}
	if data.SubmitPath == "" {
		data.SubmitPath = "/submit"
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render index page: %w", err)
	}
	return &IndexHandler{page: buf.Bytes()}, nil
}

func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	w.Write(h.page)
}
