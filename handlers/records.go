// ABOUTME: Snapshot MCP tool handlers
// ABOUTME: Implements get_snapshot, delete_record and clear_data tools
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/closex/models"
	"github.com/harperreed/closex/service"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type RecordHandlers struct {
	svc *service.Service
}

func NewRecordHandlers(svc *service.Service) *RecordHandlers {
	return &RecordHandlers{svc: svc}
}

type GetSnapshotInput struct{}

type SnapshotOutput struct {
	Contacts      map[string]models.Contact     `json:"contacts"`
	Opportunities map[string]models.Opportunity `json:"opportunities"`
	Tasks         map[string]models.Task        `json:"tasks"`
	LastSync      int64                         `json:"lastSync"`
}

func (h *RecordHandlers) GetSnapshot(ctx context.Context, _ *mcp.CallToolRequest, _ GetSnapshotInput) (*mcp.CallToolResult, SnapshotOutput, error) {
	state := h.svc.Refresh(ctx)
	if state.Err != nil {
		return nil, SnapshotOutput{}, fmt.Errorf("%s: %w", state.Status, state.Err)
	}
	s := state.Snapshot
	return nil, SnapshotOutput{
		Contacts:      s.Contacts,
		Opportunities: s.Opportunities,
		Tasks:         s.Tasks,
		LastSync:      s.LastSync,
	}, nil
}

type DeleteRecordInput struct {
	Kind string `json:"kind" jsonschema:"Record kind: contacts, opportunities or tasks"`
	ID   string `json:"id" jsonschema:"Record ID (required)"`
}

type MutationOutput struct {
	Status   string `json:"status"`
	LastSync int64  `json:"lastSync"`
	Contacts int    `json:"contacts"`
	Opps     int    `json:"opportunities"`
	Tasks    int    `json:"tasks"`
}

func (h *RecordHandlers) DeleteRecord(ctx context.Context, _ *mcp.CallToolRequest, input DeleteRecordInput) (*mcp.CallToolResult, MutationOutput, error) {
	if input.ID == "" {
		return nil, MutationOutput{}, fmt.Errorf("id is required")
	}
	kind, err := models.ParseKind(input.Kind)
	if err != nil {
		return nil, MutationOutput{}, err
	}
	return mutationResult(h.svc.Delete(ctx, kind, input.ID))
}

type ClearDataInput struct {
	Confirm bool `json:"confirm" jsonschema:"Must be true; removes every stored record"`
}

func (h *RecordHandlers) ClearData(ctx context.Context, _ *mcp.CallToolRequest, input ClearDataInput) (*mcp.CallToolResult, MutationOutput, error) {
	if !input.Confirm {
		return nil, MutationOutput{}, fmt.Errorf("confirm must be true to clear all data")
	}
	return mutationResult(h.svc.Clear(ctx))
}

func mutationResult(state service.State) (*mcp.CallToolResult, MutationOutput, error) {
	if state.Err != nil {
		return nil, MutationOutput{}, fmt.Errorf("%s: %w", state.Status, state.Err)
	}
	return nil, MutationOutput{
		Status:   state.Status,
		LastSync: state.Snapshot.LastSync,
		Contacts: len(state.Snapshot.Contacts),
		Opps:     len(state.Snapshot.Opportunities),
		Tasks:    len(state.Snapshot.Tasks),
	}, nil
}
