package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/scanarr/internal/formatter"
	"github.com/desertthunder/scanarr/internal/models"
	"github.com/desertthunder/scanarr/internal/shared"
	"github.com/urfave/cli/v3"
)

// History lists recorded imports, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireHistory(); err != nil {
		return err
	}

	criteria := map[string]any{}
	if s := cmd.String("status"); s != "" {
		status, err := models.ParseImportStatus(s)
		if err != nil {
			return err
		}
		criteria["status"] = status
	}
	if b := cmd.String("barcode"); b != "" {
		criteria["barcode"] = b
	}
	if limit := cmd.Int("limit"); limit > 0 {
		criteria["limit"] = int(limit)
	}

	jobs, err := r.imports.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list imports: %w", err)
	}

	return r.writeExport(cmd.String("format"), jobs)
}

// HistoryShow prints one import by id.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	id, err := importID(cmd)
	if err != nil {
		return err
	}
	if err := r.requireHistory(); err != nil {
		return err
	}

	job, err := r.imports.Get(id)
	if err != nil {
		return err
	}
	return r.writeExport(cmd.String("format"), []*models.ImportJob{job})
}

// HistoryDelete soft-deletes one import so it no longer appears in history.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := importID(cmd)
	if err != nil {
		return err
	}
	if err := r.requireHistory(); err != nil {
		return err
	}

	if err := r.imports.Delete(id); err != nil {
		return err
	}
	r.logger.Info("import deleted", "id", id)
	return r.writePlain("✓ Import %s deleted\n", id)
}

func (r *Runner) requireHistory() error {
	r.withHistory()
	if r.imports == nil {
		return fmt.Errorf("%w: import history is disabled (database.path is empty or unavailable)", shared.ErrServiceUnavailable)
	}
	return nil
}

func (r *Runner) writeExport(format string, jobs []*models.ImportJob) error {
	data, err := formatter.Export(format, jobs)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func importID(cmd *cli.Command) (string, error) {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return "", fmt.Errorf("%w: import id", shared.ErrMissingArgument)
	}
	return id, nil
}
