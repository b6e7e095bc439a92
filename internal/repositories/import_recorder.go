package repositories

import (
	"fmt"

	"github.com/desertthunder/scanarr/internal/models"
)

// ImportRecorderAdapter implements tasks.ImportRecorder using ImportRepository.
//
// The first call for a job inserts it and assigns its ID; later calls update it.
type ImportRecorderAdapter struct {
	repo *ImportRepository
}

// NewImportRecorderAdapter creates a new ImportRecorderAdapter with the given repository
func NewImportRecorderAdapter(repo *ImportRepository) *ImportRecorderAdapter {
	return &ImportRecorderAdapter{repo: repo}
}

// RecordImport persists the current state of job.
func (a *ImportRecorderAdapter) RecordImport(job *models.ImportJob) error {
	if job.ID() == "" {
		if err := a.repo.Create(job); err != nil {
			return fmt.Errorf("failed to record import: %w", err)
		}
		return nil
	}

	if err := a.repo.Update(job); err != nil {
		return fmt.Errorf("failed to update import record: %w", err)
	}
	return nil
}
