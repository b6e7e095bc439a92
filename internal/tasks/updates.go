package tasks

import (
	"fmt"
	"time"

	"github.com/desertthunder/scanarr/internal/services"
)

// ProgressEvent is one entry of an import's progress stream.
//
// Only Status and Progress are part of the wire format.
type ProgressEvent struct {
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Phase    Phase  `json:"-"`
}

// Terminal reports whether e is the last event of its stream.
func (e ProgressEvent) Terminal() bool {
	return e.Progress >= 100
}

// Failed reports whether e is a failure event.
func (e ProgressEvent) Failed() bool {
	return e.Phase == Failed
}

// Workflow phase enumeration
type Phase int

const (
	Start Phase = iota
	MetadataResolved
	CheckingArtist
	ArtistEnsured
	Settled
	Done
	Failed
)

// Checkpoint percentages, in emission order.
const (
	startProgress     = 5
	resolvedProgress  = 15
	checkingProgress  = 30
	ensuredProgress   = 50
	settledProgress   = 80
	completedProgress = 100
)

// checkpointCount is the number of events a successful run emits.
const checkpointCount = 6

func (p Phase) String() string {
	switch p {
	case Start:
		return "start"
	case MetadataResolved:
		return "metadata_resolved"
	case CheckingArtist:
		return "checking_artist"
	case ArtistEnsured:
		return "artist_ensured"
	case Settled:
		return "settled"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

func startEvent() ProgressEvent {
	return ProgressEvent{
		Phase:    Start,
		Progress: startProgress,
		Status:   "🔍 Processing...",
	}
}

func albumFoundEvent(meta *services.ReleaseMetadata) ProgressEvent {
	return ProgressEvent{
		Phase:    MetadataResolved,
		Progress: resolvedProgress,
		Status:   fmt.Sprintf("🎵 Album found: %s by %s", meta.AlbumTitle, meta.ArtistName),
	}
}

func checkingArtistEvent(name string) ProgressEvent {
	return ProgressEvent{
		Phase:    CheckingArtist,
		Progress: checkingProgress,
		Status:   fmt.Sprintf("🔎 Checking artist '%s'...", name),
	}
}

func artistEnsuredEvent(name string, created bool, wait time.Duration) ProgressEvent {
	state := "already exists"
	if created {
		state = "created (no albums monitored)"
	}
	return ProgressEvent{
		Phase:    ArtistEnsured,
		Progress: ensuredProgress,
		Status:   fmt.Sprintf("🕒 Artist '%s' %s. Waiting %s for Lidarr to process the artist...", name, state, formatWait(wait)),
	}
}

func addingAlbumEvent(title string) ProgressEvent {
	return ProgressEvent{
		Phase:    Settled,
		Progress: settledProgress,
		Status:   fmt.Sprintf("💿 Adding/monitoring album '%s'...", title),
	}
}

func doneEvent(title string, created bool) ProgressEvent {
	state := "is now monitored"
	if created {
		state = "added and monitored"
	}
	return ProgressEvent{
		Phase:    Done,
		Progress: completedProgress,
		Status:   fmt.Sprintf("✅ Album '%s' %s!", title, state),
	}
}

func failedEvent(err error) ProgressEvent {
	return ProgressEvent{
		Phase:    Failed,
		Progress: completedProgress,
		Status:   "❌ Error: " + err.Error(),
	}
}

// formatWait renders whole seconds as "30 seconds" and anything else with [time.Duration.String].
func formatWait(d time.Duration) string {
	switch {
	case d == time.Second:
		return "1 second"
	case d%time.Second == 0:
		return fmt.Sprintf("%d seconds", int(d/time.Second))
	default:
		return d.String()
	}
}
