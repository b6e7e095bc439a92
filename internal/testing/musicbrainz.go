package testing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Release is a minimal MusicBrainz release search hit.
type Release struct {
	ID             string
	Title          string
	ReleaseGroupID string
	ArtistName     string
	ArtistID       string
}

func (r Release) toJSON() map[string]any {
	return map[string]any{
		"id":            r.ID,
		"title":         r.Title,
		"release-group": map[string]any{"id": r.ReleaseGroupID, "title": r.Title},
		"artist-credit": []map[string]any{{
			"name":   r.ArtistName,
			"artist": map[string]any{"id": r.ArtistID, "name": r.ArtistName},
		}},
	}
}

// FakeMusicBrainz serves /release/?query=barcode:{b} from a barcode → releases table.
type FakeMusicBrainz struct {
	Server *httptest.Server

	mu         sync.Mutex
	releases   map[string][]Release
	requests   int
	userAgents []string
}

// NewFakeMusicBrainz starts a fake catalog that is closed when t finishes.
func NewFakeMusicBrainz(t *testing.T, releases map[string][]Release) *FakeMusicBrainz {
	t.Helper()
	if releases == nil {
		releases = make(map[string][]Release)
	}
	f := &FakeMusicBrainz{releases: releases}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL, equivalent to https://musicbrainz.org/ws/2.
func (f *FakeMusicBrainz) URL() string {
	return f.Server.URL
}

// Requests returns how many searches were served.
func (f *FakeMusicBrainz) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

// UserAgents returns the User-Agent header of every request.
func (f *FakeMusicBrainz) UserAgents() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.userAgents...)
}

func (f *FakeMusicBrainz) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests++
	f.userAgents = append(f.userAgents, r.UserAgent())

	if strings.TrimRight(r.URL.Path, "/") != "/release" || r.URL.Query().Get("fmt") != "json" {
		http.NotFound(w, r)
		return
	}

	barcode, ok := strings.CutPrefix(r.URL.Query().Get("query"), "barcode:")
	if !ok {
		http.Error(w, `{"error":"unsupported query"}`, http.StatusBadRequest)
		return
	}

	hits := make([]map[string]any, 0, len(f.releases[barcode]))
	for _, rel := range f.releases[barcode] {
		hits = append(hits, rel.toJSON())
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"count":    len(hits),
		"offset":   0,
		"releases": hits,
	})
}
