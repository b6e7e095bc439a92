package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/scanarr/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ScanView ViewState = iota
	ImportView
	ResultView
)

const maxBarWidth = 60

// Streamer starts an import and returns its progress channel, closed after the terminal event.
type Streamer interface {
	Stream(ctx context.Context, barcode string) <-chan tasks.ProgressEvent
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	engine  Streamer
	width   int
	height  int
	input   textinput.Model
	bar     progress.Model
	spinner spinner.Model
	history list.Model
	events  <-chan tasks.ProgressEvent
	barcode string
	log     []tasks.ProgressEvent
	notice  string
	help    help.Model
	keys    keyMap
}

// NewModel creates a new TUI model that runs imports through engine.
func NewModel(ctx context.Context, engine Streamer) *Model {
	input := textinput.New()
	input.Placeholder = "scan or type a barcode"
	input.CharLimit = 32
	input.Width = 32
	input.Focus()

	return &Model{
		ctx:     ctx,
		view:    ScanView,
		engine:  engine,
		input:   input,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(maxBarWidth)),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		history: newHistoryList(),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts the cursor blinking in the barcode input.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(maxBarWidth, max(10, msg.Width-8))
		m.history.SetSize(msg.Width-4, max(4, msg.Height-12))
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ScanView:
			return m.handleScanKeys(msg)
		case ImportView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		switch msg.kind {
		case MsgProgress:
			m.log = append(m.log, msg.data.(tasks.ProgressEvent))
			return m, waitForEvent(m.events)
		case MsgImportDone:
			return m, m.finishImport()
		}

	case spinner.TickMsg:
		if m.view != ImportView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.view == ScanView {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case ScanView:
		return m.renderScan()
	case ImportView:
		return m.renderImport()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleScanKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.exit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.submit):
		barcode := strings.TrimSpace(m.input.Value())
		if barcode == "" {
			m.notice = "No barcode provided"
			return m, nil
		}
		return m, m.startImport(barcode)
	}

	m.notice = ""
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.again):
		m.view = ScanView
		m.barcode = ""
		m.log = nil
		m.input.Reset()
		return m, tea.Batch(m.input.Focus(), textinput.Blink)
	}
	return m, nil
}

func (m *Model) startImport(barcode string) tea.Cmd {
	m.view = ImportView
	m.barcode = barcode
	m.log = nil
	m.notice = ""
	m.input.Blur()
	m.events = m.engine.Stream(m.ctx, barcode)
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

func (m *Model) finishImport() tea.Cmd {
	m.view = ResultView
	m.events = nil

	item := scanItem{barcode: m.barcode, status: "no progress received", failed: true}
	if last, ok := m.last(); ok {
		item.status = last.Status
		item.failed = last.Failed() || strings.HasPrefix(last.Status, "❌")
	}
	return m.history.InsertItem(0, item)
}

func (m *Model) last() (tasks.ProgressEvent, bool) {
	if len(m.log) == 0 {
		return tasks.ProgressEvent{}, false
	}
	return m.log[len(m.log)-1], true
}

func (m *Model) percent() float64 {
	last, ok := m.last()
	if !ok {
		return 0
	}
	return float64(last.Progress) / 100
}

func (m *Model) renderScan() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("scanarr"))
	b.WriteString("\n")
	b.WriteString(styles.box.Render(m.input.View()))
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(styles.warn.Render(m.notice))
		b.WriteString("\n")
	}
	if len(m.history.Items()) > 0 {
		b.WriteString("\n")
		b.WriteString(m.history.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.submit, m.keys.exit}))
	return b.String()
}

func (m *Model) renderImport() string {
	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("%s Importing %s", m.spinner.View(), m.barcode)))
	b.WriteString("\n")
	b.WriteString(m.bar.ViewAs(m.percent()))
	b.WriteString("\n\n")
	b.WriteString(m.renderLog())
	b.WriteString("\n")
	b.WriteString(styles.help.Render("ctrl+c to quit"))
	return b.String()
}

func (m *Model) renderResult() string {
	var b strings.Builder

	title := styles.ok.Render("✓ Import complete")
	if last, ok := m.last(); !ok || last.Failed() || strings.HasPrefix(last.Status, "❌") {
		title = styles.err.Render("✗ Import failed")
	}

	b.WriteString(styles.title.Render(title))
	b.WriteString("\n")
	b.WriteString(m.bar.ViewAs(m.percent()))
	b.WriteString("\n\n")
	b.WriteString(m.renderLog())
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.again, m.keys.quit}))
	return b.String()
}

func (m *Model) renderLog() string {
	var b strings.Builder
	for i, ev := range m.log {
		final := i == len(m.log)-1 && ev.Terminal()
		failed := ev.Failed() || strings.HasPrefix(ev.Status, "❌")
		b.WriteString(styles.status(fmt.Sprintf("%3d%%  %s", ev.Progress, ev.Status), failed, final))
		b.WriteString("\n")
	}
	return b.String()
}
