// Package tasks runs the barcode import workflow with real-time progress reporting.
//
// # Workflow
//
// [ImportEngine.Run] performs one import as a linear sequence:
//
//  1. Resolve the barcode with a [services.MetadataResolver] (first catalog release wins)
//  2. [ArtistReconciler.EnsureArtist] : find the artist by MusicBrainz id or register it
//     monitored, with monitorNewItems "none" and no missing-album search
//  3. Wait a fixed settle delay so Lidarr can finish processing a new artist
//  4. [AlbumReconciler.EnsureAlbum] : monitor the album by release-group id, either by
//     writing back its full record or by creating it with an immediate search
//
// The settle delay is applied on every run, including when the artist already existed.
//
// # Progress Reporting
//
// Each step sends a [ProgressEvent] with a fixed checkpoint: 5, 15, 30, 50, 80 and 100.
// On failure the engine sends one final event at 100 with a "❌ Error: " status and stops.
// Nothing is retried and nothing is rolled back, so an artist may stay registered when the
// album step fails.
//
// [ImportEngine.Stream] runs the workflow in its own goroutine and returns a channel sized
// for every event a run can produce, closed after the terminal event.
//
// # Import History
//
// The optional [ImportRecorder] receives the [models.ImportJob] for the run when it starts
// and when it ends. Recording errors are logged and otherwise ignored.
package tasks
