package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/scanarr/internal/shared"
)

// ImportStatus is the lifecycle state of an [ImportJob].
type ImportStatus string

const (
	ImportRunning   ImportStatus = "running"
	ImportSucceeded ImportStatus = "succeeded"
	ImportFailed    ImportStatus = "failed"
)

// Valid reports whether s is a known status.
func (s ImportStatus) Valid() bool {
	switch s {
	case ImportRunning, ImportSucceeded, ImportFailed:
		return true
	default:
		return false
	}
}

// ParseImportStatus parses a status name, case-insensitively.
func ParseImportStatus(name string) (ImportStatus, error) {
	s := ImportStatus(strings.ToLower(strings.TrimSpace(name)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown import status %q", shared.ErrInvalidArgument, name)
	}
	return s, nil
}

// ImportJob records one barcode workflow run: what was resolved, which Lidarr
// records it touched and how it ended.
type ImportJob struct {
	id              string
	sequence        int
	barcode         string
	status          ImportStatus
	artistName      string
	artistForeignID string
	albumTitle      string
	releaseGroupID  string
	lidarrArtistID  int
	lidarrAlbumID   int
	artistCreated   bool
	albumCreated    bool
	progress        int
	errorMessage    string
	startedAt       *time.Time
	completedAt     *time.Time
	createdAt       time.Time
	updatedAt       time.Time
	deletedAt       *time.Time
}

var _ Model = (*ImportJob)(nil)

// NewImportJob creates a running job for barcode.
func NewImportJob(sequence int, barcode string) *ImportJob {
	now := time.Now()
	return &ImportJob{
		sequence:  sequence,
		barcode:   barcode,
		status:    ImportRunning,
		startedAt: &now,
		createdAt: now,
		updatedAt: now,
	}
}

func (j *ImportJob) ID() string { return j.id }
func (j *ImportJob) Sequence() int { return j.sequence }
func (j *ImportJob) Barcode() string { return j.barcode }
func (j *ImportJob) Status() ImportStatus { return j.status }
func (j *ImportJob) ArtistName() string { return j.artistName }
func (j *ImportJob) ArtistForeignID() string { return j.artistForeignID }
func (j *ImportJob) AlbumTitle() string { return j.albumTitle }
func (j *ImportJob) ReleaseGroupID() string { return j.releaseGroupID }
func (j *ImportJob) LidarrArtistID() int { return j.lidarrArtistID }
func (j *ImportJob) LidarrAlbumID() int { return j.lidarrAlbumID }
func (j *ImportJob) ArtistCreated() bool { return j.artistCreated }
func (j *ImportJob) AlbumCreated() bool { return j.albumCreated }
func (j *ImportJob) Progress() int { return j.progress }
func (j *ImportJob) ErrorMessage() string { return j.errorMessage }
func (j *ImportJob) StartedAt() *time.Time { return j.startedAt }
func (j *ImportJob) CompletedAt() *time.Time { return j.completedAt }
func (j *ImportJob) CreatedAt() time.Time { return j.createdAt }
func (j *ImportJob) UpdatedAt() time.Time { return j.updatedAt }
func (j *ImportJob) DeletedAt() *time.Time { return j.deletedAt }
func (j *ImportJob) SetID(id string) { j.id = id }
func (j *ImportJob) SetSequence(n int) { j.sequence = n }
func (j *ImportJob) SetStatus(s ImportStatus) { j.status = s }
func (j *ImportJob) SetProgress(p int) { j.progress = p }
func (j *ImportJob) SetErrorMessage(msg string) { j.errorMessage = msg }
func (j *ImportJob) SetStartedAt(t *time.Time) { j.startedAt = t }
func (j *ImportJob) SetCompletedAt(t *time.Time) { j.completedAt = t }
func (j *ImportJob) SetCreatedAt(t time.Time) { j.createdAt = t }
func (j *ImportJob) SetUpdatedAt(t time.Time) { j.updatedAt = t }
func (j *ImportJob) SetDeletedAt(t *time.Time) { j.deletedAt = t }

// SetRelease stores the identity resolved from the catalog.
func (j *ImportJob) SetRelease(artistName, artistForeignID, albumTitle, releaseGroupID string) {
	j.artistName = artistName
	j.artistForeignID = artistForeignID
	j.albumTitle = albumTitle
	j.releaseGroupID = releaseGroupID
}

// SetArtist stores the Lidarr artist the run resolved to.
func (j *ImportJob) SetArtist(id int, created bool) {
	j.lidarrArtistID = id
	j.artistCreated = created
}

// SetAlbum stores the Lidarr album the run monitored.
func (j *ImportJob) SetAlbum(id int, created bool) {
	j.lidarrAlbumID = id
	j.albumCreated = created
}

// Succeed marks the job as finished at 100%.
func (j *ImportJob) Succeed() {
	j.finish(ImportSucceeded, "")
}

// Fail marks the job as failed with err's message.
func (j *ImportJob) Fail(err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	j.finish(ImportFailed, msg)
}

func (j *ImportJob) finish(status ImportStatus, msg string) {
	now := time.Now()
	j.status = status
	j.errorMessage = msg
	j.progress = 100
	j.completedAt = &now
	j.updatedAt = now
}

// Duration returns the wall time between start and completion, or zero while running.
func (j *ImportJob) Duration() time.Duration {
	if j.startedAt == nil || j.completedAt == nil {
		return 0
	}
	return j.completedAt.Sub(*j.startedAt)
}

// Validate checks that the job can be persisted.
func (j *ImportJob) Validate() error {
	if j.id == "" {
		return fmt.Errorf("%w: id is required", shared.ErrValidation)
	}
	if strings.TrimSpace(j.barcode) == "" {
		return shared.ErrMissingBarcode
	}
	if !j.status.Valid() {
		return fmt.Errorf("%w: invalid status %q", shared.ErrValidation, j.status)
	}
	if j.progress < 0 || j.progress > 100 {
		return fmt.Errorf("%w: progress %d out of range", shared.ErrValidation, j.progress)
	}
	if j.status == ImportFailed && j.errorMessage == "" {
		return fmt.Errorf("%w: failed import needs an error message", shared.ErrValidation)
	}
	return nil
}
