// ABOUTME: MCP resource handlers for exposing snapshot data
// ABOUTME: Provides read-only access to records and metrics via closex:// URIs
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/closex/models"
	"github.com/harperreed/closex/service"
	"github.com/harperreed/closex/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const resourceScheme = "closex://"

// Resources lists every URI ReadResource serves.
var Resources = []*mcp.Resource{
	{URI: "closex://snapshot", Name: "snapshot", MIMEType: "application/json", Description: "The whole stored snapshot"},
	{URI: "closex://contacts", Name: "contacts", MIMEType: "application/json", Description: "Scraped contacts sorted by name"},
	{URI: "closex://opportunities", Name: "opportunities", MIMEType: "application/json", Description: "Scraped opportunities sorted by name"},
	{URI: "closex://tasks", Name: "tasks", MIMEType: "application/json", Description: "Scraped tasks sorted by description"},
	{URI: "closex://metrics", Name: "metrics", MIMEType: "application/json", Description: "Pipeline metrics derived from the snapshot"},
}

type ResourceHandlers struct {
	svc *service.Service
}

func NewResourceHandlers(svc *service.Service) *ResourceHandlers {
	return &ResourceHandlers{svc: svc}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}

	state := h.svc.Refresh(ctx)
	if state.Err != nil {
		return nil, fmt.Errorf("%s: %w", state.Status, state.Err)
	}
	s := state.Snapshot

	var payload any
	switch name := strings.TrimPrefix(uri, resourceScheme); name {
	case "snapshot":
		payload = s
	case "metrics":
		payload = viz.Compute(s, time.Now())
	default:
		kind, err := models.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("unknown resource: %s", name)
		}
		switch kind {
		case models.KindContacts:
			payload = s.ContactList()
		case models.KindOpportunities:
			payload = s.OpportunityList()
		case models.KindTasks:
			payload = s.TaskList()
		}
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
