// Lidarr collection manager client
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/scanarr/internal/shared"
)

const (
	lidarrService   = "lidarr"
	lidarrAPIPrefix = "/api/v1"
	lidarrKeyHeader = "X-Api-Key"
)

// LidarrService talks to the Lidarr v1 API with a static API key.
type LidarrService struct {
	api *APIService
	cfg shared.LidarrConfig
}

// NewLidarrService creates a Lidarr client from cfg.
//
// A nil client uses [http.DefaultClient].
func NewLidarrService(cfg shared.LidarrConfig, client *http.Client) *LidarrService {
	headers := map[string]string{lidarrKeyHeader: cfg.APIKey}
	return &LidarrService{
		api: NewAPIService(cfg.URL+lidarrAPIPrefix, client, headers),
		cfg: cfg,
	}
}

// Name returns the service name.
func (l *LidarrService) Name() string {
	return "Lidarr"
}

// doRequest sends a request and decodes a 2xx body into result.
//
// Transport failures, non-2xx statuses and undecodable bodies are all reported as [shared.UpstreamError].
func (l *LidarrService) doRequest(ctx context.Context, op, method, endpoint string, body, result any) (*APIResponse, error) {
	resp, err := l.api.Do(ctx, method, endpoint, body)
	if err != nil {
		return nil, shared.NewUpstreamError(lidarrService, op, err)
	}

	if !resp.OK() {
		return resp, shared.NewStatusError(lidarrService, op, resp.StatusCode, resp.Body)
	}

	if result != nil && len(resp.Body) > 0 {
		if err := resp.Decode(result); err != nil {
			if !errors.Is(err, shared.ErrUnexpectedResponse) {
				err = fmt.Errorf("%w: %v", shared.ErrUnexpectedResponse, err)
			}
			return resp, shared.NewUpstreamError(lidarrService, op, err)
		}
	}

	return resp, nil
}

// ListArtists returns every artist in the collection.
//
// Calls GET /api/v1/artist. Lidarr does not paginate this endpoint.
func (l *LidarrService) ListArtists(ctx context.Context) ([]Artist, error) {
	var artists []Artist
	if _, err := l.doRequest(ctx, "list artists", http.MethodGet, "/artist", nil, &artists); err != nil {
		return nil, err
	}
	return artists, nil
}

// GetArtist returns the full record of one artist.
//
// Calls GET /api/v1/artist/{id}.
func (l *LidarrService) GetArtist(ctx context.Context, id int) (*Artist, error) {
	var artist Artist
	endpoint := "/artist/" + strconv.Itoa(id)
	if err := l.expectBody(ctx, "get artist", http.MethodGet, endpoint, nil, &artist); err != nil {
		return nil, err
	}
	return &artist, nil
}

// AddArtist registers a new artist and returns the created record.
//
// Calls POST /api/v1/artist.
func (l *LidarrService) AddArtist(ctx context.Context, req AddArtistRequest) (*Artist, error) {
	var artist Artist
	if err := l.expectBody(ctx, "add artist", http.MethodPost, "/artist", req, &artist); err != nil {
		return nil, err
	}
	return &artist, nil
}

// ListAlbums returns the albums Lidarr knows for one artist.
//
// Calls GET /api/v1/album?artistId={id}. Entries may be abbreviated records.
func (l *LidarrService) ListAlbums(ctx context.Context, artistID int) ([]Album, error) {
	var albums []Album
	endpoint := "/album?" + url.Values{"artistId": {strconv.Itoa(artistID)}}.Encode()
	if _, err := l.doRequest(ctx, "list albums", http.MethodGet, endpoint, nil, &albums); err != nil {
		return nil, err
	}
	return albums, nil
}

// GetAlbum returns the full record of one album.
//
// Calls GET /api/v1/album/{id}.
func (l *LidarrService) GetAlbum(ctx context.Context, id int) (*Album, error) {
	var album Album
	endpoint := "/album/" + strconv.Itoa(id)
	if err := l.expectBody(ctx, "get album", http.MethodGet, endpoint, nil, &album); err != nil {
		return nil, err
	}
	return &album, nil
}

// UpdateAlbum persists the complete album record.
//
// Calls PUT /api/v1/album/{id}. Lidarr does not accept partial updates, so album
// should be a record fetched with [LidarrService.GetAlbum]. When the response has
// no body the sent record is returned.
func (l *LidarrService) UpdateAlbum(ctx context.Context, album *Album) (*Album, error) {
	if album == nil || album.ID == 0 {
		return nil, fmt.Errorf("%w: album id is required for update", shared.ErrInvalidArgument)
	}

	var updated Album
	endpoint := "/album/" + strconv.Itoa(album.ID)
	resp, err := l.doRequest(ctx, "update album", http.MethodPut, endpoint, album, &updated)
	if err != nil {
		return nil, err
	}
	if len(resp.Body) == 0 {
		return album, nil
	}
	return &updated, nil
}

// AddAlbum registers a new album and returns the created record.
//
// Calls POST /api/v1/album.
func (l *LidarrService) AddAlbum(ctx context.Context, req AddAlbumRequest) (*Album, error) {
	var album Album
	if err := l.expectBody(ctx, "add album", http.MethodPost, "/album", req, &album); err != nil {
		return nil, err
	}
	return &album, nil
}

// expectBody is doRequest for endpoints that must answer with a record.
func (l *LidarrService) expectBody(ctx context.Context, op, method, endpoint string, body, result any) error {
	resp, err := l.doRequest(ctx, op, method, endpoint, body, result)
	if err != nil {
		return err
	}
	if len(resp.Body) == 0 {
		return shared.NewUpstreamError(lidarrService, op, fmt.Errorf("%w: empty body", shared.ErrUnexpectedResponse))
	}
	return nil
}
