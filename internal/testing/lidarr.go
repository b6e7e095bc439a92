package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// FakeLidarr is an in-memory Lidarr v1 API backed by [httptest.Server].
//
// Records are stored as untyped JSON objects so tests can assert that unknown
// fields survive a round trip. Every request is counted by "METHOD /path".
type FakeLidarr struct {
	Server *httptest.Server
	APIKey string

	mu       sync.Mutex
	artists  []map[string]any
	albums   []map[string]any
	calls    map[string]int
	bodies   map[string][]map[string]any
	failures map[string]int
	nextID   int

	RootFolders      []map[string]any
	QualityProfiles  []map[string]any
	MetadataProfiles []map[string]any
}

// NewFakeLidarr starts a fake Lidarr server that is closed when t finishes.
func NewFakeLidarr(t *testing.T, apiKey string) *FakeLidarr {
	t.Helper()
	f := &FakeLidarr{
		APIKey:           apiKey,
		calls:            make(map[string]int),
		bodies:           make(map[string][]map[string]any),
		failures:         make(map[string]int),
		nextID:           100,
		RootFolders:      []map[string]any{{"id": 1, "path": "/music"}},
		QualityProfiles:  []map[string]any{{"id": 2, "name": "Lossless"}},
		MetadataProfiles: []map[string]any{{"id": 9, "name": "Standard"}},
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the server root, without the API prefix.
func (f *FakeLidarr) URL() string {
	return f.Server.URL
}

// AddArtist seeds an artist record and returns its id.
func (f *FakeLidarr) AddArtist(record map[string]any) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(&f.artists, record)
}

// AddAlbum seeds an album record and returns its id.
func (f *FakeLidarr) AddAlbum(record map[string]any) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(&f.albums, record)
}

// Album returns the stored album record with id.
func (f *FakeLidarr) Album(id int) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return find(f.albums, id)
}

// Calls returns how many times "METHOD /path" was requested, e.g. "POST /api/v1/artist".
func (f *FakeLidarr) Calls(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

// Bodies returns the decoded request bodies sent to "METHOD /path".
func (f *FakeLidarr) Bodies(key string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[key]
}

// FailWith makes every request to "METHOD /path" answer with status.
func (f *FakeLidarr) FailWith(key string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[key] = status
}

func (f *FakeLidarr) insert(into *[]map[string]any, record map[string]any) int {
	id, ok := record["id"].(int)
	if !ok {
		f.nextID++
		id = f.nextID
		record["id"] = id
	}
	*into = append(*into, record)
	return id
}

func (f *FakeLidarr) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := r.Method + " " + r.URL.Path
	f.calls[key]++

	if f.APIKey != "" && r.Header.Get("X-Api-Key") != f.APIKey {
		http.Error(w, `{"message":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var body map[string]any
	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.bodies[key] = append(f.bodies[key], body)
	}

	if status, ok := f.failures[key]; ok {
		http.Error(w, fmt.Sprintf(`{"message":"forced failure for %s"}`, key), status)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	resource, idText, _ := strings.Cut(strings.Trim(path, "/"), "/")

	switch {
	case resource == "rootfolder" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, f.RootFolders)
	case resource == "qualityprofile" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, f.QualityProfiles)
	case resource == "metadataprofile" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, f.MetadataProfiles)

	case resource == "artist" && idText == "" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, nonNil(f.artists))
	case resource == "artist" && idText == "" && r.Method == http.MethodPost:
		record := map[string]any{"path": "/music/" + fmt.Sprint(body["artistName"])}
		for k, v := range body {
			record[k] = v
		}
		delete(record, "addOptions")
		f.insert(&f.artists, record)
		writeJSON(w, http.StatusCreated, record)
	case resource == "artist" && r.Method == http.MethodGet:
		f.writeRecord(w, f.artists, idText)

	case resource == "album" && idText == "" && r.Method == http.MethodGet:
		artistID, _ := strconv.Atoi(r.URL.Query().Get("artistId"))
		matches := []map[string]any{}
		for _, a := range f.albums {
			if toInt(a["artistId"]) == artistID {
				matches = append(matches, abbreviate(a))
			}
		}
		writeJSON(w, http.StatusOK, matches)
	case resource == "album" && idText == "" && r.Method == http.MethodPost:
		record := map[string]any{"anyReleaseOk": true}
		for k, v := range body {
			record[k] = v
		}
		delete(record, "addOptions")
		delete(record, "artist")
		f.insert(&f.albums, record)
		writeJSON(w, http.StatusCreated, record)
	case resource == "album" && r.Method == http.MethodGet:
		f.writeRecord(w, f.albums, idText)
	case resource == "album" && r.Method == http.MethodPut:
		id, _ := strconv.Atoi(idText)
		for i, a := range f.albums {
			if toInt(a["id"]) == id {
				body["id"] = id
				f.albums[i] = body
				writeJSON(w, http.StatusAccepted, body)
				return
			}
		}
		http.NotFound(w, r)

	default:
		http.NotFound(w, r)
	}
}

func (f *FakeLidarr) writeRecord(w http.ResponseWriter, records []map[string]any, idText string) {
	id, err := strconv.Atoi(idText)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	if rec := find(records, id); rec != nil {
		writeJSON(w, http.StatusOK, rec)
		return
	}
	http.Error(w, `{"message":"NotFound"}`, http.StatusNotFound)
}

// abbreviate mimics the list endpoint, which omits nested collections.
func abbreviate(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		if k == "releases" || k == "media" {
			continue
		}
		out[k] = v
	}
	return out
}

func find(records []map[string]any, id int) map[string]any {
	for _, rec := range records {
		if toInt(rec["id"]) == id {
			return rec
		}
	}
	return nil
}

func nonNil(records []map[string]any) []map[string]any {
	if records == nil {
		return []map[string]any{}
	}
	return records
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	default:
		return 0
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
