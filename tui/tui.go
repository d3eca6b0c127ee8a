// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Provides an interactive full-screen view of the scraped snapshot
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/closex/models"
	"github.com/harperreed/closex/service"
)

// statusTimeout is how long a status message stays on screen.
const statusTimeout = 4 * time.Second

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewSearch
	ViewConfirmDelete
	ViewConfirmClear
)

// Tab selects what the list view shows.
type Tab int

const (
	TabOverview Tab = iota
	TabContacts
	TabPipeline
	TabTasks
)

var tabNames = []string{"Overview", "Contacts", "Pipeline", "Tasks"}

// stateMsg carries the service state after an action.
type stateMsg struct {
	state service.State
}

// clearStatusMsg dismisses the status message it was scheduled for.
type clearStatusMsg struct {
	seq int
}

// Model is the main bubbletea model
type Model struct {
	svc       *service.Service
	newSource func() models.PageSource
	viewMode  ViewMode
	tab       Tab

	state service.State

	// List view state
	selectedRow int
	searchQuery string
	searchInput textinput.Model

	// Delete confirmation state
	pendingKind models.Kind
	pendingID   string
	pendingName string

	status    string
	statusSeq int

	width  int
	height int
}

// NewModel creates a new TUI model. newSource builds the page source for
// the extract key and may be nil.
func NewModel(svc *service.Service, newSource func() models.PageSource) Model {
	input := textinput.New()
	input.Placeholder = "search"
	input.Prompt = "/ "
	input.CharLimit = 100

	return Model{
		svc:         svc,
		newSource:   newSource,
		viewMode:    ViewList,
		tab:         TabOverview,
		searchInput: input,
		width:       80,
		height:      24,
	}
}

// Run starts the full-screen program.
func Run(svc *service.Service, newSource func() models.PageSource) error {
	_, err := tea.NewProgram(NewModel(svc, newSource), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.refresh()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case stateMsg:
		m.state = msg.state
		if rows := m.rowCount(); m.selectedRow >= rows && rows > 0 {
			m.selectedRow = rows - 1
		}
		if msg.state.Status == "" || msg.state.Status == models.StatusIdle {
			return m, nil
		}
		return m.setStatus(msg.state.Status)
	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	case ViewConfirmClear:
		return m.renderConfirmClearView()
	}
	return m.renderListView()
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Delegate to view-specific handlers
	switch m.viewMode {
	case ViewList:
		if msg.String() == "q" {
			return m, tea.Quit
		}
		return m.handleListKeys(msg)
	case ViewSearch:
		return m.handleSearchKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	case ViewConfirmClear:
		return m.handleConfirmClearKeys(msg)
	}

	return m, nil
}

// setStatus shows text and schedules its dismissal.
func (m Model) setStatus(text string) (Model, tea.Cmd) {
	m.statusSeq++
	m.status = text
	seq := m.statusSeq
	return m, tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

func (m Model) refresh() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		return stateMsg{state: svc.Refresh(context.Background())}
	}
}

func (m Model) extract() tea.Cmd {
	if m.newSource == nil {
		return func() tea.Msg {
			return stateMsg{state: service.State{
				Snapshot: m.state.Snapshot,
				Metrics:  m.state.Metrics,
				Status:   models.StatusNotReachable,
			}}
		}
	}
	svc, source := m.svc, m.newSource()
	return func() tea.Msg {
		_, state := svc.Extract(context.Background(), models.ExtractRequest{
			Type:   models.ExtractMessageType,
			Source: source,
		})
		return stateMsg{state: state}
	}
}

func (m Model) delete(kind models.Kind, id string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		return stateMsg{state: svc.Delete(context.Background(), kind, id)}
	}
}

func (m Model) clear() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		return stateMsg{state: svc.Clear(context.Background())}
	}
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)
