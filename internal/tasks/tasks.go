package tasks

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/scanarr/internal/models"
	"github.com/desertthunder/scanarr/internal/services"
	"github.com/desertthunder/scanarr/internal/shared"
)

// DefaultSettleDelay is how long the workflow waits for Lidarr to finish processing an artist.
const DefaultSettleDelay = 30 * time.Second

// ImportRecorder persists the history of import runs.
//
// RecordImport is called once when a run starts and once when it ends, with the same job.
// Recording is best effort: errors are logged and never change the progress stream.
type ImportRecorder interface {
	RecordImport(job *models.ImportJob) error
}

// WaitFunc blocks for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

// EngineOpts contains the optional collaborators of an [ImportEngine].
type EngineOpts struct {
	Artist      ArtistDefaults
	SettleDelay time.Duration // non-positive uses DefaultSettleDelay
	Wait        WaitFunc      // defaults to a timer-based sleep
	Recorder    ImportRecorder
	Logger      *log.Logger
}

// ImportResult contains everything a completed run resolved and changed.
type ImportResult struct {
	Barcode  string
	Metadata *services.ReleaseMetadata
	Artist   ArtistOutcome
	Album    AlbumOutcome
	Job      *models.ImportJob
}

// ImportEngine runs barcode imports. It holds no per-run state and is safe for concurrent use.
type ImportEngine struct {
	resolver services.MetadataResolver
	artists  *ArtistReconciler
	albums   *AlbumReconciler
	settle   time.Duration
	wait     WaitFunc
	recorder ImportRecorder
	logger   *log.Logger
}

// NewImportEngine creates a new ImportEngine with the provided services.
func NewImportEngine(resolver services.MetadataResolver, lidarr services.Collection, opts EngineOpts) *ImportEngine {
	settle := opts.SettleDelay
	if settle <= 0 {
		settle = DefaultSettleDelay
	}

	wait := opts.Wait
	if wait == nil {
		wait = sleep
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &ImportEngine{
		resolver: resolver,
		artists:  NewArtistReconciler(lidarr, opts.Artist),
		albums:   NewAlbumReconciler(lidarr),
		settle:   settle,
		wait:     wait,
		recorder: opts.Recorder,
		logger:   logger,
	}
}

// SettleDelay returns the wait applied between the artist and album steps.
func (e *ImportEngine) SettleDelay() time.Duration {
	return e.settle
}

// Stream runs an import in a new goroutine and returns its progress events.
//
// The channel is buffered for every event a run can emit, so the run never blocks
// on a slow or departed consumer. It is closed after the terminal event.
// An empty barcode yields a single failure event.
func (e *ImportEngine) Stream(ctx context.Context, barcode string) <-chan ProgressEvent {
	events := make(chan ProgressEvent, checkpointCount)

	go func() {
		defer close(events)
		if strings.TrimSpace(barcode) == "" {
			events <- failedEvent(shared.ErrMissingBarcode)
			return
		}
		e.Run(ctx, barcode, events)
	}()

	return events
}

// Run performs a full import of barcode, sending progress to the given channel.
//
// A successful run emits the checkpoints 5, 15, 30, 50, 80 and 100 in order. A failed run
// emits a prefix of those followed by one progress 100 event whose status carries the
// error; the same error is returned. Nothing is retried and nothing created before the
// failure is rolled back. An empty barcode is rejected before any event is sent.
// Run does not close progress.
func (e *ImportEngine) Run(ctx context.Context, barcode string, progress chan<- ProgressEvent) (*ImportResult, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, shared.ErrMissingBarcode
	}

	logger := e.logger.With("barcode", barcode)
	result := &ImportResult{Barcode: barcode, Job: models.NewImportJob(0, barcode)}

	fail := func(err error) (*ImportResult, error) {
		logger.Error("import failed", "error", err)
		result.Job.Fail(err)
		e.record(logger, result.Job)
		e.sendProgress(ctx, progress, failedEvent(err))
		return result, err
	}

	e.record(logger, result.Job)
	e.sendProgress(ctx, progress, startEvent())

	meta, err := e.resolver.ResolveBarcode(ctx, barcode)
	if err != nil {
		return fail(err)
	}
	result.Metadata = meta
	result.Job.SetRelease(meta.ArtistName, meta.ArtistForeignID, meta.AlbumTitle, meta.ReleaseGroupID)
	result.Job.SetProgress(resolvedProgress)
	logger.Info("release resolved", "artist", meta.ArtistName, "album", meta.AlbumTitle, "release_group", meta.ReleaseGroupID)
	e.sendProgress(ctx, progress, albumFoundEvent(meta))

	e.sendProgress(ctx, progress, checkingArtistEvent(meta.ArtistName))
	artist, err := e.artists.EnsureArtist(ctx, meta.ArtistName, meta.ArtistForeignID)
	if err != nil {
		return fail(err)
	}
	result.Artist = artist
	result.Job.SetArtist(artist.ID, artist.Created)
	result.Job.SetProgress(ensuredProgress)
	logger.Info("artist ensured", "artist_id", artist.ID, "created", artist.Created)
	e.sendProgress(ctx, progress, artistEnsuredEvent(meta.ArtistName, artist.Created, e.settle))

	logger.Debug("waiting for lidarr", "delay", e.settle)
	if err := e.wait(ctx, e.settle); err != nil {
		return fail(err)
	}

	e.sendProgress(ctx, progress, addingAlbumEvent(meta.AlbumTitle))
	album, err := e.albums.EnsureAlbum(ctx, artist.ID, meta.ReleaseGroupID, meta.AlbumTitle)
	if err != nil {
		return fail(err)
	}
	result.Album = album
	result.Job.SetAlbum(album.Album.ID, album.Created)
	logger.Info("album monitored", "album_id", album.Album.ID, "created", album.Created)

	result.Job.Succeed()
	e.record(logger, result.Job)
	e.sendProgress(ctx, progress, doneEvent(meta.AlbumTitle, album.Created))
	return result, nil
}

// sendProgress delivers an event, blocking while the channel is full.
// The event is dropped only when the channel is full and ctx is done.
func (e *ImportEngine) sendProgress(ctx context.Context, progress chan<- ProgressEvent, ev ProgressEvent) {
	if progress == nil {
		return
	}
	select {
	case progress <- ev:
		return
	default:
	}
	select {
	case progress <- ev:
	case <-ctx.Done():
	}
}

func (e *ImportEngine) record(logger *log.Logger, job *models.ImportJob) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.RecordImport(job); err != nil {
		logger.Warn("failed to record import", "error", err)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
