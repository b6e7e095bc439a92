package tasks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/desertthunder/scanarr/internal/models"
	"github.com/desertthunder/scanarr/internal/services"
	"github.com/desertthunder/scanarr/internal/shared"
)

type mockResolver struct {
	releases map[string]*services.ReleaseMetadata
	err      error
	calls    int
}

func (m *mockResolver) ResolveBarcode(ctx context.Context, barcode string) (*services.ReleaseMetadata, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if meta, ok := m.releases[barcode]; ok {
		return meta, nil
	}
	return nil, &shared.NotFoundError{Barcode: barcode}
}

// mockCollection is an in-memory Lidarr that counts calls per operation.
type mockCollection struct {
	mu      sync.Mutex
	artists []services.Artist
	albums  []services.Album
	calls   map[string]int
	errs    map[string]error
	order   []string
	nextID  int

	addedArtist  *services.AddArtistRequest
	addedAlbum   *services.AddAlbumRequest
	updatedAlbum *services.Album
}

func newMockCollection() *mockCollection {
	return &mockCollection{calls: make(map[string]int), errs: make(map[string]error), nextID: 500}
}

func (m *mockCollection) hit(op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[op]++
	m.order = append(m.order, op)
	return m.errs[op]
}

func (m *mockCollection) count(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *mockCollection) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

func (m *mockCollection) ListArtists(ctx context.Context) ([]services.Artist, error) {
	if err := m.hit("ListArtists"); err != nil {
		return nil, err
	}
	return m.artists, nil
}

func (m *mockCollection) GetArtist(ctx context.Context, id int) (*services.Artist, error) {
	if err := m.hit("GetArtist"); err != nil {
		return nil, err
	}
	for _, a := range m.artists {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, shared.NewStatusError("lidarr", "get artist", 404, nil)
}

func (m *mockCollection) AddArtist(ctx context.Context, req services.AddArtistRequest) (*services.Artist, error) {
	if err := m.hit("AddArtist"); err != nil {
		return nil, err
	}
	m.addedArtist = &req
	m.nextID++
	a := services.Artist{ID: m.nextID, ArtistName: req.ArtistName, ForeignArtistID: req.ForeignArtistID, Monitored: req.Monitored}
	m.artists = append(m.artists, a)
	return &a, nil
}

func (m *mockCollection) ListAlbums(ctx context.Context, artistID int) ([]services.Album, error) {
	if err := m.hit("ListAlbums"); err != nil {
		return nil, err
	}
	var out []services.Album
	for _, a := range m.albums {
		if a.ArtistID == artistID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockCollection) GetAlbum(ctx context.Context, id int) (*services.Album, error) {
	if err := m.hit("GetAlbum"); err != nil {
		return nil, err
	}
	for _, a := range m.albums {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, shared.NewStatusError("lidarr", "get album", 404, nil)
}

func (m *mockCollection) UpdateAlbum(ctx context.Context, album *services.Album) (*services.Album, error) {
	if err := m.hit("UpdateAlbum"); err != nil {
		return nil, err
	}
	m.updatedAlbum = album
	return album, nil
}

func (m *mockCollection) AddAlbum(ctx context.Context, req services.AddAlbumRequest) (*services.Album, error) {
	if err := m.hit("AddAlbum"); err != nil {
		return nil, err
	}
	m.addedAlbum = &req
	m.nextID++
	a := services.Album{ID: m.nextID, ArtistID: req.ArtistID, Title: req.Title, ForeignAlbumID: req.ForeignAlbumID, Monitored: req.Monitored}
	m.albums = append(m.albums, a)
	return &a, nil
}

// waitRecorder replaces the settle sleep and records when it ran relative to the collection calls.
type waitRecorder struct {
	coll      *mockCollection
	durations []time.Duration
	callsAt   []int
	err       error
}

func (w *waitRecorder) wait(ctx context.Context, d time.Duration) error {
	w.durations = append(w.durations, d)
	w.callsAt = append(w.callsAt, w.coll.total())
	return w.err
}

type mockRecorder struct {
	jobs  []*models.ImportJob
	snaps []models.ImportStatus
	err   error
}

func (m *mockRecorder) RecordImport(job *models.ImportJob) error {
	m.jobs = append(m.jobs, job)
	m.snaps = append(m.snaps, job.Status())
	return m.err
}

var errBoom = errors.New("boom")
