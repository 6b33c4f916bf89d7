package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/traxyt/internal/models"
	"github.com/desertthunder/traxyt/internal/shared"
	"github.com/desertthunder/traxyt/internal/tasks"
)

const (
	maxLogLines  = 6
	maxBarWidth  = 72
	defaultWidth = 80
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	TrackListView ViewState = iota
	ConvertView
	ResultView
)

// Converter runs one conversion to completion.
type Converter interface {
	Run(ctx context.Context, tracks []models.Track) (*models.ConversionResult, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	cancel     context.CancelFunc
	view       ViewState
	converter  Converter
	events     <-chan models.Event
	listening  bool
	tracks     []models.Track
	width      int
	height     int
	trackList  list.Model
	resultList list.Model
	bar        progress.Model
	current    models.ProgressEvent
	lines      []string
	result     *models.ConversionResult
	err        error
	notice     string
	open       func(string) error
	help       help.Model
	keys       keyMap
}

// NewModel creates a TUI model for tracks.
//
// events should be the channel behind the converter's [tasks.ChannelEmitter]; it may be nil,
// in which case only the final result is shown.
func NewModel(ctx context.Context, tracks []models.Track, converter Converter, events <-chan models.Event) *Model {
	trackList := list.New(trackItems(tracks), list.NewDefaultDelegate(), defaultWidth, 20)
	trackList.Title = fmt.Sprintf("%d chart tracks", len(tracks))

	return &Model{
		ctx:       ctx,
		view:      TrackListView,
		converter: converter,
		events:    events,
		tracks:    tracks,
		trackList: trackList,
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithWidth(maxBarWidth)),
		open:      shared.OpenBrowser,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Result returns the finished conversion, if any.
func (m *Model) Result() (*models.ConversionResult, error) {
	return m.result, m.err
}

// Init implements [tea.Model]; the track list needs no loading.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.trackList.SetSize(msg.Width-4, msg.Height-6)
		m.resultList.SetSize(msg.Width-4, msg.Height-10)
		m.bar.Width = min(msg.Width-4, maxBarWidth)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case ConvertView:
			return m.handleConvertKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case TrackListView:
		return m.renderTrackList()
	case ConvertView:
		return m.renderConvert()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgEvent:
		m.listening = false
		event := msg.data.(models.Event)
		switch event.Type {
		case models.EventProgress:
			if event.Progress != nil {
				m.current = *event.Progress
				m.lines = append(m.lines, tasks.Describe(*event.Progress))
				if len(m.lines) > maxLogLines {
					m.lines = m.lines[len(m.lines)-maxLogLines:]
				}
			}
		case models.EventError:
			m.lines = append(m.lines, styles.err.Render(event.Message))
		}
		if m.view == ConvertView {
			return m, m.waitForEvent()
		}
		return m, nil

	case MsgRunDone:
		done := msg.data.(runDone)
		m.result = done.result
		m.err = done.err
		m.cancel = nil
		m.resultList = list.New(outcomeItems(done.result), list.NewDefaultDelegate(), max(m.width-4, defaultWidth), max(m.height-10, 10))
		m.resultList.Title = "Results"
		m.view = ResultView
		return m, nil

	case MsgBrowserOpened:
		if err, _ := msg.data.(error); err != nil {
			m.notice = styles.err.Render("Could not open browser: " + err.Error())
		} else {
			m.notice = styles.ok.Render("Opened playlist in browser")
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.trackList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.trackList, cmd = m.trackList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.start):
		m.view = ConvertView
		m.current = models.ProgressEvent{Total: len(m.tracks)}
		m.lines = nil
		m.notice = ""
		return m, m.startConversion()
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleConvertKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.open):
		if m.result == nil || m.result.URL() == "" {
			m.notice = styles.warn.Render("No playlist to open")
			return m, nil
		}
		return m, m.openPlaylist(m.result.URL())
	case key.Matches(msg, m.keys.restart):
		m.view = TrackListView
		m.result = nil
		m.err = nil
		m.notice = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.resultList, cmd = m.resultList.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	case ResultView:
		m.resultList, cmd = m.resultList.Update(msg)
	}
	return m, cmd
}

func (m *Model) startConversion() tea.Cmd {
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	converter, tracks := m.converter, m.tracks

	run := func() tea.Msg {
		defer cancel()
		result, err := converter.Run(ctx, tracks)
		return runDoneMsg(result, err)
	}
	return tea.Batch(run, m.waitForEvent())
}

// waitForEvent keeps at most one reader on the event channel.
func (m *Model) waitForEvent() tea.Cmd {
	if m.events == nil || m.listening {
		return nil
	}
	m.listening = true
	events := m.events
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg(event)
	}
}

func (m *Model) openPlaylist(url string) tea.Cmd {
	open := m.open
	return func() tea.Msg {
		return browserOpenedMsg(open(url))
	}
}

func (m *Model) renderTrackList() string {
	helpKeys := []key.Binding{m.keys.start, m.keys.up, m.keys.down, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderConvert() string {
	title := styles.title.Render(fmt.Sprintf("Converting %d tracks", len(m.tracks)))

	percent := 0.0
	if m.current.Total > 0 {
		percent = float64(m.current.Current) / float64(m.current.Total)
	}
	counter := fmt.Sprintf("%d/%d", m.current.Current, m.current.Total)

	var b strings.Builder
	b.WriteString(title + "\n")
	b.WriteString(m.bar.ViewAs(percent) + "  " + counter + "\n\n")
	for _, line := range m.lines {
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.keys.quit}))
	return b.String()
}

func (m *Model) renderResult() string {
	helpKeys := []key.Binding{m.keys.open, m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if m.err != nil {
		msg := styles.err.Render(fmt.Sprintf("Conversion failed: %v", m.err))
		return fmt.Sprintf("%s\n\n%s", msg, m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit}))
	}
	if m.result == nil {
		return styles.err.Render("No result available") + "\n\n" + helpView
	}

	var b strings.Builder
	b.WriteString(styles.ok.Render(fmt.Sprintf("✓ Found %d of %d", m.result.Found, m.result.Total)) + "\n")
	if url := m.result.URL(); url != "" {
		b.WriteString("Playlist: " + url + "\n")
	} else {
		b.WriteString(styles.warn.Render("No playlist: nothing matched") + "\n")
	}
	if skipped := m.result.Count(models.StatusSkipped); skipped > 0 {
		b.WriteString(styles.help.Render(fmt.Sprintf("%d skipped", skipped)) + "\n")
	}
	b.WriteString("\n" + m.resultList.View() + "\n")
	if m.notice != "" {
		b.WriteString(m.notice + "\n")
	}
	b.WriteString("\n" + helpView)
	return b.String()
}
