// ABOUTME: Confirmation dialogs for TUI
// ABOUTME: Guards deleting one record and clearing the whole snapshot
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("9")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

func (m Model) renderConfirmDeleteView() string {
	kind := strings.TrimSuffix(string(m.pendingKind), "s")
	if m.pendingKind == "opportunities" {
		kind = "opportunity"
	}
	return m.renderConfirm(
		"⚠  DELETE CONFIRMATION  ⚠",
		fmt.Sprintf("Are you sure you want to delete this %s?", kind),
		fmt.Sprintf("\n%s: %s\n", strings.ToUpper(kind), m.pendingName),
		"Yes, Delete (y)",
	)
}

func (m Model) renderConfirmClearView() string {
	return m.renderConfirm(
		"⚠  CLEAR ALL DATA  ⚠",
		"Are you sure you want to delete every scraped record?",
		fmt.Sprintf("\n%d contacts, %d opportunities, %d tasks\n",
			len(m.snapshot().Contacts), len(m.snapshot().Opportunities), len(m.snapshot().Tasks)),
		"Yes, Clear (y)",
	)
}

func (m Model) renderConfirm(title, message, info, confirm string) string {
	warning := "\nThis action cannot be undone!"

	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		confirmButtonStyle.Render(confirm),
		cancelButtonStyle.Render("Cancel (n/esc)"),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		warningStyle.Render(title),
		"",
		message,
		info,
		warning,
		"",
		buttons,
	)

	// Center the box on screen
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		confirmBoxStyle.Render(content),
	)
}

func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		kind, id := m.pendingKind, m.pendingID
		m.pendingKind, m.pendingID, m.pendingName = "", "", ""
		m.viewMode = ViewList
		return m, m.delete(kind, id)
	case "n", "N", "esc":
		m.viewMode = ViewList
	}

	return m, nil
}

func (m Model) handleConfirmClearKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.viewMode = ViewList
		m.selectedRow = 0
		return m, m.clear()
	case "n", "N", "esc":
		m.viewMode = ViewList
	}

	return m, nil
}
