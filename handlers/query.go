// ABOUTME: Record search tool handler
// ABOUTME: Implements search_records with case-insensitive substring matching
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/closex/models"
	"github.com/harperreed/closex/service"
	"github.com/harperreed/closex/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type QueryHandlers struct {
	svc *service.Service
}

func NewQueryHandlers(svc *service.Service) *QueryHandlers {
	return &QueryHandlers{svc: svc}
}

type SearchRecordsInput struct {
	Kind  string `json:"kind,omitempty" jsonschema:"contacts, opportunities or tasks (default: all)"`
	Query string `json:"query,omitempty" jsonschema:"Substring matched against name, lead or description"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum results per kind (default 25)"`
}

type SearchRecordsOutput struct {
	Contacts      []models.Contact     `json:"contacts,omitempty"`
	Opportunities []models.Opportunity `json:"opportunities,omitempty"`
	Tasks         []models.Task        `json:"tasks,omitempty"`
	Count         int                  `json:"count"`
}

func (h *QueryHandlers) SearchRecords(ctx context.Context, _ *mcp.CallToolRequest, input SearchRecordsInput) (*mcp.CallToolResult, SearchRecordsOutput, error) {
	if input.Limit <= 0 {
		input.Limit = 25
	}

	kinds := models.Kinds
	if input.Kind != "" {
		kind, err := models.ParseKind(input.Kind)
		if err != nil {
			return nil, SearchRecordsOutput{}, err
		}
		kinds = []models.Kind{kind}
	}

	state := h.svc.Refresh(ctx)
	if state.Err != nil {
		return nil, SearchRecordsOutput{}, fmt.Errorf("%s: %w", state.Status, state.Err)
	}
	s := state.Snapshot

	var out SearchRecordsOutput
	for _, kind := range kinds {
		switch kind {
		case models.KindContacts:
			out.Contacts = limit(viz.FilterContacts(s.ContactList(), input.Query), input.Limit)
			out.Count += len(out.Contacts)
		case models.KindOpportunities:
			out.Opportunities = limit(viz.FilterOpportunities(s.OpportunityList(), input.Query), input.Limit)
			out.Count += len(out.Opportunities)
		case models.KindTasks:
			out.Tasks = limit(viz.FilterTasks(s.TaskList(), input.Query), input.Limit)
			out.Count += len(out.Tasks)
		}
	}
	return nil, out, nil
}

func limit[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
