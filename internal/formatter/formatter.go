// package formatter renders import history as a table, CSV or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/scanarr/internal/models"
	"github.com/desertthunder/scanarr/internal/shared"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Format names accepted by [Export].
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

var headers = []string{"#", "Barcode", "Status", "Artist", "Album", "Artist Added", "Album Added", "Started", "Duration", "Error"}

// ImportRecord is the exported view of a [models.ImportJob].
type ImportRecord struct {
	ID             string     `json:"id"`
	Sequence       int        `json:"sequence"`
	Barcode        string     `json:"barcode"`
	Status         string     `json:"status"`
	Artist         string     `json:"artist,omitempty"`
	ArtistID       string     `json:"artist_foreign_id,omitempty"`
	Album          string     `json:"album,omitempty"`
	ReleaseGroupID string     `json:"release_group_id,omitempty"`
	LidarrArtistID int        `json:"lidarr_artist_id,omitempty"`
	LidarrAlbumID  int        `json:"lidarr_album_id,omitempty"`
	ArtistCreated  bool       `json:"artist_created"`
	AlbumCreated   bool       `json:"album_created"`
	Progress       int        `json:"progress"`
	Error          string     `json:"error,omitempty"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// NewImportRecord copies job into an ImportRecord.
func NewImportRecord(job *models.ImportJob) ImportRecord {
	return ImportRecord{
		ID:             job.ID(),
		Sequence:       job.Sequence(),
		Barcode:        job.Barcode(),
		Status:         string(job.Status()),
		Artist:         job.ArtistName(),
		ArtistID:       job.ArtistForeignID(),
		Album:          job.AlbumTitle(),
		ReleaseGroupID: job.ReleaseGroupID(),
		LidarrArtistID: job.LidarrArtistID(),
		LidarrAlbumID:  job.LidarrAlbumID(),
		ArtistCreated:  job.ArtistCreated(),
		AlbumCreated:   job.AlbumCreated(),
		Progress:       job.Progress(),
		Error:          job.ErrorMessage(),
		StartedAt:      job.StartedAt(),
		CompletedAt:    job.CompletedAt(),
	}
}

// Export renders jobs in the named format.
func Export(format string, jobs []*models.ImportJob) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatTable, "":
		return ExportToTable(jobs), nil
	case FormatCSV:
		return ExportToCSV(jobs)
	case FormatJSON:
		return ExportToJSON(jobs)
	default:
		return nil, fmt.Errorf("%w: unknown format %q (want table, csv or json)", shared.ErrInvalidFlag, format)
	}
}

// ExportToTable renders jobs as a rounded terminal table.
func ExportToTable(jobs []*models.ImportJob) []byte {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, job := range jobs {
		row := make(table.Row, 0, len(headers))
		for _, cell := range jobRow(job) {
			row = append(row, cell)
		}
		tw.AppendRow(row)
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 9, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 10, WidthMax: 48},
	})

	return []byte(tw.Render() + "\n")
}

// ExportToCSV converts jobs to CSV with the same columns as the table.
func ExportToCSV(jobs []*models.ImportJob) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, job := range jobs {
		if err := writer.Write(jobRow(job)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts jobs to an indented JSON array of [ImportRecord].
func ExportToJSON(jobs []*models.ImportJob) ([]byte, error) {
	records := make([]ImportRecord, 0, len(jobs))
	for _, job := range jobs {
		records = append(records, NewImportRecord(job))
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal imports: %w", err)
	}
	return append(data, '\n'), nil
}

func jobRow(job *models.ImportJob) []string {
	started := ""
	if t := job.StartedAt(); t != nil {
		started = t.Local().Format(time.DateTime)
	}

	return []string{
		strconv.Itoa(job.Sequence()),
		job.Barcode(),
		string(job.Status()),
		job.ArtistName(),
		job.AlbumTitle(),
		yesNo(job.ArtistCreated()),
		yesNo(job.AlbumCreated()),
		started,
		FormatDuration(job.Duration()),
		job.ErrorMessage(),
	}
}

// FormatDuration renders d rounded to tenths of a second, or "-" for zero.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(100 * time.Millisecond).String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
