package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/scanarr/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProgress MsgKind = iota
	MsgImportDone
)

// progressMsg is the constructor for [MsgProgress]
func progressMsg(ev tasks.ProgressEvent) Msg {
	return Msg{kind: MsgProgress, data: ev}
}

// importDoneMsg is the constructor for [MsgImportDone], sent once the event channel closes
func importDoneMsg() Msg {
	return Msg{kind: MsgImportDone}
}

// waitForEvent reads the next event from events.
func waitForEvent(events <-chan tasks.ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return importDoneMsg()
		}
		return progressMsg(ev)
	}
}
