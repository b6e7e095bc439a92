package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/scanarr/internal/services"
	"github.com/desertthunder/scanarr/internal/shared"
)

// AlbumOutcome is the monitored album record an import ended with.
type AlbumOutcome struct {
	Album   *services.Album
	Created bool
}

// AlbumReconciler monitors an existing album or registers it as monitored.
type AlbumReconciler struct {
	lidarr services.Collection
}

// NewAlbumReconciler creates an AlbumReconciler.
func NewAlbumReconciler(lidarr services.Collection) *AlbumReconciler {
	return &AlbumReconciler{lidarr: lidarr}
}

// EnsureAlbum makes the artist's album with releaseGroupID monitored.
//
// An album already known to Lidarr is re-fetched in full, flipped to monitored and
// written back whole. An unknown album is created monitored, embedding the artist's
// full record, with an immediate search for it.
func (r *AlbumReconciler) EnsureAlbum(ctx context.Context, artistID int, releaseGroupID, title string) (AlbumOutcome, error) {
	if strings.TrimSpace(releaseGroupID) == "" {
		return AlbumOutcome{}, fmt.Errorf("%w: release group id is required", shared.ErrInvalidArgument)
	}

	albums, err := r.lidarr.ListAlbums(ctx, artistID)
	if err != nil {
		return AlbumOutcome{}, err
	}

	for _, a := range albums {
		if a.ForeignAlbumID != releaseGroupID {
			continue
		}

		full, err := r.lidarr.GetAlbum(ctx, a.ID)
		if err != nil {
			return AlbumOutcome{}, err
		}
		full.Monitored = true

		updated, err := r.lidarr.UpdateAlbum(ctx, full)
		if err != nil {
			return AlbumOutcome{}, err
		}
		return AlbumOutcome{Album: updated}, nil
	}

	artist, err := r.lidarr.GetArtist(ctx, artistID)
	if err != nil {
		return AlbumOutcome{}, err
	}

	created, err := r.lidarr.AddAlbum(ctx, services.AddAlbumRequest{
		ArtistID:       artistID,
		Artist:         artist,
		ForeignAlbumID: releaseGroupID,
		Title:          title,
		Monitored:      true,
		AddOptions:     services.AlbumAddOptions{SearchForNewAlbum: true},
	})
	if err != nil {
		return AlbumOutcome{}, err
	}

	return AlbumOutcome{Album: created, Created: true}, nil
}
