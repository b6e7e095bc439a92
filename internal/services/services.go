// package services defines the clients for the metadata catalog and the collection manager
//
// MusicBrainz, Lidarr
package services

import (
	"context"
)

// MetadataResolver maps a product barcode onto release metadata.
type MetadataResolver interface {
	// ResolveBarcode looks up the first catalog release for barcode.
	//
	// Returns a [shared.NotFoundError] when the catalog has no release,
	// and a [shared.UpstreamError] when the call fails or the response is malformed.
	ResolveBarcode(ctx context.Context, barcode string) (*ReleaseMetadata, error)
}

// Collection is the subset of the Lidarr API the import workflow needs.
type Collection interface {
	ListArtists(ctx context.Context) ([]Artist, error)
	GetArtist(ctx context.Context, id int) (*Artist, error)
	AddArtist(ctx context.Context, req AddArtistRequest) (*Artist, error)

	ListAlbums(ctx context.Context, artistID int) ([]Album, error)
	GetAlbum(ctx context.Context, id int) (*Album, error)
	UpdateAlbum(ctx context.Context, album *Album) (*Album, error)
	AddAlbum(ctx context.Context, req AddAlbumRequest) (*Album, error)
}

// ConfigChecker probes the collection manager's configuration endpoints.
type ConfigChecker interface {
	CheckConfig(ctx context.Context) ConfigReport
}

// ReleaseMetadata is the album and artist identity resolved from a barcode.
type ReleaseMetadata struct {
	ArtistName      string `json:"artist_name"`
	ArtistForeignID string `json:"artist_foreign_id"` // MusicBrainz artist id
	AlbumTitle      string `json:"album_title"`
	ReleaseGroupID  string `json:"release_group_id"` // MusicBrainz release-group id
	ReleaseID       string `json:"release_id,omitempty"`
	Matches         int    `json:"matches"` // releases returned for the barcode
}
