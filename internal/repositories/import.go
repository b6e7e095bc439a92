package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/scanarr/internal/models"
	"github.com/desertthunder/scanarr/internal/shared"
)

const importColumns = `
	id, sequence, barcode, status, artist_name, artist_foreign_id, album_title,
	release_group_id, lidarr_artist_id, lidarr_album_id, artist_created, album_created,
	progress, error_message, started_at, completed_at, created_at, updated_at, deleted_at
`

// ImportRepository stores import history.
type ImportRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.ImportJob] = (*ImportRepository)(nil)

// NewImportRepository creates a new ImportRepository with the given database connection
func NewImportRepository(db *sql.DB) *ImportRepository {
	return &ImportRepository{db: db}
}

// Create inserts a new import job with a generated ID and the next sequence number
func (r *ImportRepository) Create(job *models.ImportJob) error {
	sequence, err := NextSequence(r.db, "imports")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	job.SetID(id)
	job.SetSequence(sequence)

	if err := job.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO imports (` + importColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		job.Barcode(),
		job.Status(),
		nullString(job.ArtistName()),
		nullString(job.ArtistForeignID()),
		nullString(job.AlbumTitle()),
		nullString(job.ReleaseGroupID()),
		nullInt(job.LidarrArtistID()),
		nullInt(job.LidarrAlbumID()),
		job.ArtistCreated(),
		job.AlbumCreated(),
		job.Progress(),
		nullString(job.ErrorMessage()),
		job.StartedAt(),
		job.CompletedAt(),
		job.CreatedAt(),
		job.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert import: %w", err)
	}

	return nil
}

// Get retrieves an import job by ID, excluding soft-deleted jobs
func (r *ImportRepository) Get(id string) (*models.ImportJob, error) {
	query := `SELECT ` + importColumns + ` FROM imports WHERE id = ? AND deleted_at IS NULL`

	job, err := scanImport(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: import %s", ErrNotFound, id)
	}
	return job, err
}

// Update writes the mutable state of an existing import job
func (r *ImportRepository) Update(job *models.ImportJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	job.SetUpdatedAt(now)

	query := `
		UPDATE imports
		SET status = ?, artist_name = ?, artist_foreign_id = ?, album_title = ?,
			release_group_id = ?, lidarr_artist_id = ?, lidarr_album_id = ?,
			artist_created = ?, album_created = ?, progress = ?, error_message = ?,
			completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		job.Status(),
		nullString(job.ArtistName()),
		nullString(job.ArtistForeignID()),
		nullString(job.AlbumTitle()),
		nullString(job.ReleaseGroupID()),
		nullInt(job.LidarrArtistID()),
		nullInt(job.LidarrAlbumID()),
		job.ArtistCreated(),
		job.AlbumCreated(),
		job.Progress(),
		nullString(job.ErrorMessage()),
		job.CompletedAt(),
		now,
		job.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update import: %w", err)
	}

	return expectAffected(result, job.ID())
}

// Delete soft-deletes an import job by ID
func (r *ImportRepository) Delete(id string) error {
	query := `
		UPDATE imports
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete import: %w", err)
	}

	return expectAffected(result, id)
}

// List retrieves import jobs newest first, excluding soft-deleted jobs.
//
// Supported criteria: "status" (models.ImportStatus or string), "barcode" (string) and
// "limit" (int, non-positive means no limit).
func (r *ImportRepository) List(criteria map[string]any) ([]*models.ImportJob, error) {
	query := `SELECT ` + importColumns + ` FROM imports WHERE deleted_at IS NULL`
	args := []any{}

	switch status := criteria["status"].(type) {
	case models.ImportStatus:
		if status != "" {
			query += " AND status = ?"
			args = append(args, string(status))
		}
	case string:
		if status != "" {
			query += " AND status = ?"
			args = append(args, status)
		}
	}

	if barcode, ok := criteria["barcode"].(string); ok && barcode != "" {
		query += " AND barcode = ?"
		args = append(args, barcode)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query imports: %w", err)
	}
	defer rows.Close()

	var jobs []*models.ImportJob
	for rows.Next() {
		job, err := scanImport(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return jobs, nil
}

// rowScanner is satisfied by both [sql.Row] and [sql.Rows].
type rowScanner interface {
	Scan(dest ...any) error
}

func scanImport(row rowScanner) (*models.ImportJob, error) {
	var (
		id              string
		sequence        int
		barcode         string
		status          string
		artistName      sql.NullString
		artistForeignID sql.NullString
		albumTitle      sql.NullString
		releaseGroupID  sql.NullString
		lidarrArtistID  sql.NullInt64
		lidarrAlbumID   sql.NullInt64
		artistCreated   bool
		albumCreated    bool
		progress        int
		errorMessage    sql.NullString
		startedAt       sql.NullTime
		completedAt     sql.NullTime
		createdAt       time.Time
		updatedAt       time.Time
		deletedAt       sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &barcode, &status, &artistName, &artistForeignID, &albumTitle,
		&releaseGroupID, &lidarrArtistID, &lidarrAlbumID, &artistCreated, &albumCreated,
		&progress, &errorMessage, &startedAt, &completedAt, &createdAt, &updatedAt, &deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan import: %w", err)
	}

	job := models.NewImportJob(sequence, barcode)
	job.SetID(id)
	job.SetStatus(models.ImportStatus(status))
	job.SetRelease(artistName.String, artistForeignID.String, albumTitle.String, releaseGroupID.String)
	job.SetArtist(int(lidarrArtistID.Int64), artistCreated)
	job.SetAlbum(int(lidarrAlbumID.Int64), albumCreated)
	job.SetProgress(progress)
	job.SetErrorMessage(errorMessage.String)
	job.SetStartedAt(nullTime(startedAt))
	job.SetCompletedAt(nullTime(completedAt))
	job.SetCreatedAt(createdAt)
	job.SetUpdatedAt(updatedAt)
	job.SetDeletedAt(nullTime(deletedAt))

	return job, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}

func expectAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: import %s not found or already deleted", ErrNotFound, id)
	}
	return nil
}
