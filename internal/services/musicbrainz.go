// MusicBrainz metadata catalog client
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/scanarr/internal/shared"
	"golang.org/x/time/rate"
)

const (
	musicBrainzService    = "musicbrainz"
	defaultMusicBrainzURL = "https://musicbrainz.org/ws/2"
	defaultUserAgent      = "scanarr/0.1.0 ( https://github.com/desertthunder/scanarr )"
)

type mbArtistCredit struct {
	Name   string `json:"name"`
	Artist struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artist"`
}

type mbRelease struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ReleaseGroup *struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"release-group"`
	ArtistCredit []mbArtistCredit `json:"artist-credit"`
}

type mbReleaseSearch struct {
	Count    int         `json:"count"`
	Releases []mbRelease `json:"releases"`
}

// MusicBrainzService resolves barcodes against the MusicBrainz release search.
//
// Requests share one [rate.Limiter] across all callers.
type MusicBrainzService struct {
	api     *APIService
	limiter *rate.Limiter
}

// NewMusicBrainzService creates a MusicBrainz client from cfg.
//
// A non-positive rate limit disables throttling.
func NewMusicBrainzService(cfg shared.MusicBrainzConfig, client *http.Client) *MusicBrainzService {
	baseURL := cfg.URL
	if baseURL == "" {
		baseURL = defaultMusicBrainzURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &MusicBrainzService{
		api:     NewAPIService(baseURL, client, map[string]string{"User-Agent": userAgent}),
		limiter: limiter,
	}
}

// Name returns the service name.
func (m *MusicBrainzService) Name() string {
	return "MusicBrainz"
}

// ResolveBarcode looks up barcode and extracts the identity of the first release.
//
// Calls GET /release/?query=barcode:{barcode}&fmt=json. Only the first release is used;
// the catalog's order is kept as-is.
func (m *MusicBrainzService) ResolveBarcode(ctx context.Context, barcode string) (*ReleaseMetadata, error) {
	const op = "search releases"

	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, shared.ErrMissingBarcode
	}

	if err := m.limiter.Wait(ctx); err != nil {
		return nil, shared.NewUpstreamError(musicBrainzService, op, err)
	}

	query := url.Values{"query": {"barcode:" + barcode}, "fmt": {"json"}}
	resp, err := m.api.Get(ctx, "/release/?"+query.Encode())
	if err != nil {
		return nil, shared.NewUpstreamError(musicBrainzService, op, err)
	}
	if !resp.OK() {
		return nil, shared.NewStatusError(musicBrainzService, op, resp.StatusCode, resp.Body)
	}

	var search mbReleaseSearch
	if err := resp.Decode(&search); err != nil {
		return nil, shared.NewUpstreamError(musicBrainzService, op, fmt.Errorf("%w: %v", shared.ErrUnexpectedResponse, err))
	}

	if len(search.Releases) == 0 {
		return nil, &shared.NotFoundError{Barcode: barcode}
	}

	meta, err := releaseMetadata(search.Releases[0])
	if err != nil {
		return nil, shared.NewUpstreamError(musicBrainzService, op, err)
	}
	meta.Matches = len(search.Releases)
	return meta, nil
}

// releaseMetadata validates the fields the workflow joins on.
func releaseMetadata(r mbRelease) (*ReleaseMetadata, error) {
	switch {
	case r.ReleaseGroup == nil || r.ReleaseGroup.ID == "":
		return nil, fmt.Errorf("%w: release %s has no release-group id", shared.ErrUnexpectedResponse, r.ID)
	case len(r.ArtistCredit) == 0:
		return nil, fmt.Errorf("%w: release %s has no artist-credit", shared.ErrUnexpectedResponse, r.ID)
	case r.ArtistCredit[0].Artist.ID == "":
		return nil, fmt.Errorf("%w: release %s has no credited artist id", shared.ErrUnexpectedResponse, r.ID)
	}

	credit := r.ArtistCredit[0]
	name := credit.Name
	if name == "" {
		name = credit.Artist.Name
	}
	title := r.Title
	if title == "" {
		title = r.ReleaseGroup.Title
	}

	return &ReleaseMetadata{
		ArtistName:      name,
		ArtistForeignID: credit.Artist.ID,
		AlbumTitle:      title,
		ReleaseGroupID:  r.ReleaseGroup.ID,
		ReleaseID:       r.ID,
	}, nil
}
