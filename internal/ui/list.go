package ui

import (
	"github.com/charmbracelet/bubbles/list"
)

var (
	_ list.Item = scanItem{}
)

// scanItem is one finished import of the session, shown in the history list.
type scanItem struct {
	barcode string
	status  string
	failed  bool
}

func (i scanItem) FilterValue() string { return i.barcode }
func (i scanItem) Title() string {
	if i.failed {
		return "✗ " + i.barcode
	}
	return "✓ " + i.barcode
}
func (i scanItem) Description() string { return i.status }

func newHistoryList() list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Scanned this session"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	return l
}
