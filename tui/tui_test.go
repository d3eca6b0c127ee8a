// ABOUTME: Tests for the TUI model
// ABOUTME: Drives Update with key messages against an in-memory service
package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/closex/logging"
	"github.com/harperreed/closex/models"
	"github.com/harperreed/closex/scraper"
	"github.com/harperreed/closex/service"
	"github.com/harperreed/closex/store"
)

const leadsPage = `<table>
  <thead><tr><th>Name</th><th>Status</th><th>Owner</th><th>Contacts</th></tr></thead>
  <tbody>
    <tr class="DataTable_row_a"><td>Acme</td><td>Potential</td><td>Me</td><td>Ann <a href="mailto:ann@acme.com">mail</a></td></tr>
    <tr class="DataTable_row_a"><td>Globex</td><td>Qualified</td><td>Me</td><td>Hank <a href="mailto:hank@globex.com">mail</a></td></tr>
  </tbody>
</table>`

func leadsSource() models.PageSource {
	return scraper.ReaderSource{Reader: strings.NewReader(leadsPage), URL: "https://app.close.com/leads/"}
}

func setupTestModel(t *testing.T) Model {
	t.Helper()
	logger := logging.Discard()
	svc := service.New(store.NewGateway(store.NewMemoryBackend(), "", logger), logger)
	t.Cleanup(func() { _ = svc.Close() })
	return NewModel(svc, leadsSource)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// actionKeys return service commands; other keys only return timers.
var actionKeys = map[string]bool{"e": true, "r": true, "y": true}

// press sends a key and, for action keys, feeds the resulting state back.
func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	next, cmd := m.Update(key(k))
	m = next.(Model)
	if !actionKeys[k] {
		return m
	}
	return drain(t, m, cmd)
}

func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	raw := cmd()
	msg, ok := raw.(stateMsg)
	if !ok {
		t.Fatalf("expected a stateMsg, got %T", raw)
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestInitLoadsEmptySnapshot(t *testing.T) {
	m := setupTestModel(t)
	m = drain(t, m, m.Init())

	if m.state.Snapshot == nil {
		t.Fatal("Init should load a snapshot")
	}
	if !strings.Contains(m.View(), "Overview") {
		t.Error("View should show the Overview tab")
	}
}

func TestExtractKeyMergesRecords(t *testing.T) {
	m := setupTestModel(t)
	m = press(t, m, "e")

	if got := len(m.state.Snapshot.Contacts); got != 2 {
		t.Fatalf("expected 2 contacts after extract, got %d", got)
	}
	if m.status != "Extracted 2 contacts." {
		t.Errorf("unexpected status %q", m.status)
	}
}

func TestStatusDismissesOnlyMatchingTick(t *testing.T) {
	m := setupTestModel(t)
	m = press(t, m, "e")
	seq := m.statusSeq

	next, _ := m.Update(clearStatusMsg{seq: seq - 1})
	m = next.(Model)
	if m.status == "" {
		t.Fatal("stale tick should not clear the status")
	}

	next, _ = m.Update(clearStatusMsg{seq: seq})
	m = next.(Model)
	if m.status != "" {
		t.Errorf("status should be cleared, got %q", m.status)
	}
	if len(m.state.Snapshot.Contacts) != 2 {
		t.Error("dismissing the status must not touch the data")
	}
}

func TestTabCyclesThroughViews(t *testing.T) {
	m := setupTestModel(t)
	for _, want := range []Tab{TabContacts, TabPipeline, TabTasks, TabOverview} {
		m = press(t, m, "tab")
		if m.tab != want {
			t.Fatalf("expected tab %d, got %d", want, m.tab)
		}
	}
}

func TestSearchFiltersContacts(t *testing.T) {
	m := setupTestModel(t)
	m = press(t, m, "e")
	m = press(t, m, "tab")
	m = press(t, m, "/")
	if m.viewMode != ViewSearch {
		t.Fatal("expected search mode")
	}
	for _, r := range "glob" {
		m = press(t, m, string(r))
	}
	m = press(t, m, "enter")

	if m.searchQuery != "glob" {
		t.Fatalf("expected query glob, got %q", m.searchQuery)
	}
	if got := len(m.contacts()); got != 1 {
		t.Fatalf("expected 1 filtered contact, got %d", got)
	}
	view := m.View()
	if !strings.Contains(view, "Hank") || strings.Contains(view, "Ann") {
		t.Error("view should only list the matching contact")
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	m := setupTestModel(t)
	m = press(t, m, "e")
	m = press(t, m, "tab")

	m = press(t, m, "d")
	if m.viewMode != ViewConfirmDelete {
		t.Fatal("d should open the confirmation view")
	}
	m = press(t, m, "n")
	if len(m.state.Snapshot.Contacts) != 2 {
		t.Fatal("cancel must not delete")
	}

	m = press(t, m, "d")
	m = press(t, m, "y")
	if m.viewMode != ViewList {
		t.Error("confirming should return to the list")
	}
	if len(m.state.Snapshot.Contacts) != 1 {
		t.Fatalf("expected 1 contact after delete, got %d", len(m.state.Snapshot.Contacts))
	}
	if !strings.HasPrefix(m.status, "Deleted contact") {
		t.Errorf("unexpected status %q", m.status)
	}
}

func TestClearAllWithConfirmation(t *testing.T) {
	m := setupTestModel(t)
	m = press(t, m, "e")

	m = press(t, m, "X")
	if m.viewMode != ViewConfirmClear {
		t.Fatal("X should open the clear confirmation")
	}
	if !strings.Contains(m.View(), "2 contacts") {
		t.Error("confirmation should show what will be removed")
	}
	m = press(t, m, "y")

	if len(m.state.Snapshot.Contacts) != 0 || m.state.Snapshot.LastSync != 0 {
		t.Error("clear should leave an empty snapshot")
	}
	if m.status != models.StatusWiped {
		t.Errorf("unexpected status %q", m.status)
	}
}

func TestRefreshPicksUpExternalChanges(t *testing.T) {
	m := setupTestModel(t)
	m = drain(t, m, m.Init())

	_, _ = m.svc.Extract(context.Background(), models.ExtractRequest{Type: models.ExtractMessageType, Source: leadsSource()})
	m = press(t, m, "r")

	if len(m.state.Snapshot.Contacts) != 2 {
		t.Error("refresh should re-read the store")
	}
}

func TestExtractWithoutSource(t *testing.T) {
	logger := logging.Discard()
	svc := service.New(store.NewGateway(store.NewMemoryBackend(), "", logger), logger)
	m := NewModel(svc, nil)

	m = press(t, m, "e")
	if m.status != models.StatusNotReachable {
		t.Errorf("unexpected status %q", m.status)
	}
}

func TestOverviewRendersCharts(t *testing.T) {
	m := setupTestModel(t)
	m = press(t, m, "e")
	m.width, m.height = 120, 40

	view := m.View()
	for _, want := range []string{"Contacts", "Revenue trend", "Leads by stage", "Last sync"} {
		if !strings.Contains(view, want) {
			t.Errorf("overview missing %q", want)
		}
	}
}
