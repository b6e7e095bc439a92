package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/scanarr/internal/services"
	"github.com/desertthunder/scanarr/internal/shared"
)

// ArtistDefaults are the fixed values new artists are registered with.
type ArtistDefaults struct {
	RootFolderPath    string
	QualityProfileID  int
	MetadataProfileID int
}

// ArtistDefaultsFrom copies the registration values out of the Lidarr config.
func ArtistDefaultsFrom(cfg shared.LidarrConfig) ArtistDefaults {
	return ArtistDefaults{
		RootFolderPath:    cfg.RootFolderPath,
		QualityProfileID:  cfg.QualityProfileID,
		MetadataProfileID: cfg.MetadataProfileID,
	}
}

// ArtistOutcome is the Lidarr artist an import resolved to.
type ArtistOutcome struct {
	ID      int
	Created bool
}

// ArtistReconciler finds or registers an artist by MusicBrainz id.
type ArtistReconciler struct {
	lidarr   services.Collection
	defaults ArtistDefaults
}

// NewArtistReconciler creates an ArtistReconciler.
func NewArtistReconciler(lidarr services.Collection, defaults ArtistDefaults) *ArtistReconciler {
	return &ArtistReconciler{lidarr: lidarr, defaults: defaults}
}

// EnsureArtist returns the Lidarr id of the artist with foreignID, registering it if absent.
//
// Artists are matched on foreign id only, never on name. A new artist is monitored
// but with monitorNewItems "none" and no missing-album search, so none of its
// catalog is queued for download.
func (r *ArtistReconciler) EnsureArtist(ctx context.Context, name, foreignID string) (ArtistOutcome, error) {
	if strings.TrimSpace(foreignID) == "" {
		return ArtistOutcome{}, fmt.Errorf("%w: artist foreign id is required", shared.ErrInvalidArgument)
	}

	artists, err := r.lidarr.ListArtists(ctx)
	if err != nil {
		return ArtistOutcome{}, err
	}

	for _, a := range artists {
		if a.ForeignArtistID == foreignID {
			return ArtistOutcome{ID: a.ID}, nil
		}
	}

	created, err := r.lidarr.AddArtist(ctx, services.AddArtistRequest{
		ArtistName:        name,
		ForeignArtistID:   foreignID,
		RootFolderPath:    r.defaults.RootFolderPath,
		QualityProfileID:  r.defaults.QualityProfileID,
		MetadataProfileID: r.defaults.MetadataProfileID,
		Monitored:         true,
		MonitorNewItems:   services.MonitorNewItemsNone,
		AddOptions:        services.ArtistAddOptions{SearchForMissingAlbums: false},
	})
	if err != nil {
		return ArtistOutcome{}, err
	}

	return ArtistOutcome{ID: created.ID, Created: true}, nil
}
