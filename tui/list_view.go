// ABOUTME: Tabbed record list view for TUI
// ABOUTME: Table rendering, search input and key handling for the list mode
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/closex/models"
	"github.com/harperreed/closex/viz"
)

func (m Model) renderListView() string {
	var s strings.Builder

	// Title
	s.WriteString(titleStyle.Render("CLOSEX"))
	s.WriteString("\n\n")

	// Tabs
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	if m.tab == TabOverview {
		s.WriteString(m.renderOverview())
	} else {
		if m.viewMode == ViewSearch {
			s.WriteString(m.searchInput.View())
			s.WriteString("\n")
		} else if m.searchQuery != "" {
			s.WriteString(helpStyle.Render("filter: " + m.searchQuery))
			s.WriteString("\n")
		}
		s.WriteString(m.renderTable())
	}
	s.WriteString("\n")

	if m.status != "" {
		style := statusStyle
		if m.state.Err != nil {
			style = errorStyle
		}
		s.WriteString(style.Render(m.status))
		s.WriteString("\n")
	}

	// Help
	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string

	for i, tab := range tabNames {
		if Tab(i) == m.tab {
			rendered = append(rendered, tabActiveStyle.Render(tab))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(tab))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// snapshot never returns nil.
func (m Model) snapshot() *models.Snapshot {
	if m.state.Snapshot == nil {
		return models.NewSnapshot()
	}
	return m.state.Snapshot
}

func (m Model) contacts() []models.Contact {
	return viz.FilterContacts(m.snapshot().ContactList(), m.searchQuery)
}

func (m Model) opportunities() []models.Opportunity {
	return viz.FilterOpportunities(m.snapshot().OpportunityList(), m.searchQuery)
}

func (m Model) tasks() []models.Task {
	return viz.FilterTasks(m.snapshot().TaskList(), m.searchQuery)
}

func (m Model) rowCount() int {
	switch m.tab {
	case TabContacts:
		return len(m.contacts())
	case TabPipeline:
		return len(m.opportunities())
	case TabTasks:
		return len(m.tasks())
	}
	return 0
}

func (m Model) renderTable() string {
	var columns []table.Column
	var rows []table.Row

	switch m.tab {
	case TabContacts:
		columns = []table.Column{
			{Title: "Name", Width: 24},
			{Title: "Lead", Width: 24},
			{Title: "Email", Width: 30},
			{Title: "Phone", Width: 16},
		}
		for _, c := range m.contacts() {
			rows = append(rows, table.Row{c.Name, c.Lead, first(c.Emails), first(c.Phones)})
		}
	case TabPipeline:
		columns = []table.Column{
			{Title: "Name", Width: 30},
			{Title: "Value", Width: 14},
			{Title: "Status", Width: 20},
			{Title: "Close Date", Width: 14},
		}
		for _, o := range m.opportunities() {
			rows = append(rows, table.Row{o.Name, o.Value, o.Status, o.CloseDate})
		}
	case TabTasks:
		columns = []table.Column{
			{Title: "✓", Width: 3},
			{Title: "Description", Width: 40},
			{Title: "Due", Width: 14},
			{Title: "Assignee", Width: 20},
		}
		for _, t := range m.tasks() {
			done := ""
			if t.IsComplete {
				done = "✓"
			}
			rows = append(rows, table.Row{done, t.Description, t.DueDate, t.Assignee})
		}
	}

	if len(rows) == 0 {
		return helpStyle.Render("No records. Press e to extract.")
	}

	height := m.height - 12
	if height < 3 {
		height = 3
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	// Set selected row
	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Tab: Switch tabs",
		"/: Search",
		"d: Delete",
		"X: Clear all",
		"e: Extract",
		"r: Refresh",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < m.rowCount()-1 {
			m.selectedRow++
		}
	case "tab":
		m.tab = (m.tab + 1) % Tab(len(tabNames))
		m.selectedRow = 0
	case "shift+tab":
		m.tab = (m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
		m.selectedRow = 0
	case "/":
		if m.tab == TabOverview {
			return m, nil
		}
		m.viewMode = ViewSearch
		m.searchInput.SetValue(m.searchQuery)
		return m, m.searchInput.Focus()
	case "esc":
		m.searchQuery = ""
		m.selectedRow = 0
	case "d":
		kind, id, name := m.selected()
		if id == "" {
			return m, nil
		}
		m.pendingKind, m.pendingID, m.pendingName = kind, id, name
		m.viewMode = ViewConfirmDelete
	case "X":
		m.viewMode = ViewConfirmClear
	case "e":
		m.status = models.StatusRequesting
		return m, m.extract()
	case "r":
		return m, m.refresh()
	}

	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searchQuery = strings.TrimSpace(m.searchInput.Value())
		m.selectedRow = 0
		m.viewMode = ViewList
		m.searchInput.Blur()
		return m, nil
	case tea.KeyEsc:
		m.viewMode = ViewList
		m.searchInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// selected returns the kind, id and display name of the highlighted row.
func (m Model) selected() (models.Kind, string, string) {
	switch m.tab {
	case TabContacts:
		if items := m.contacts(); m.selectedRow < len(items) {
			return models.KindContacts, items[m.selectedRow].ID, items[m.selectedRow].Name
		}
	case TabPipeline:
		if items := m.opportunities(); m.selectedRow < len(items) {
			return models.KindOpportunities, items[m.selectedRow].ID, items[m.selectedRow].Name
		}
	case TabTasks:
		if items := m.tasks(); m.selectedRow < len(items) {
			return models.KindTasks, items[m.selectedRow].ID, items[m.selectedRow].Description
		}
	}
	return "", "", ""
}
