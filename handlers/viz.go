// ABOUTME: Metrics and graph MCP handlers
// ABOUTME: Provides get_metrics and generate_graph tools for agents
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/closex/service"
	"github.com/harperreed/closex/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type VizHandlers struct {
	svc *service.Service
}

func NewVizHandlers(svc *service.Service) *VizHandlers {
	return &VizHandlers{svc: svc}
}

type GetMetricsInput struct {
	RecentLeads int `json:"recent_leads,omitempty" jsonschema:"Number of recent leads to include (default 5)"`
}

type GetMetricsOutput struct {
	Metrics        viz.Metrics      `json:"metrics"`
	PipelineValue  string           `json:"pipeline_value"`
	ConversionRate string           `json:"conversion_rate"`
	LastSync       string           `json:"last_sync"`
	RecentLeads    []viz.RecentLead `json:"recent_leads"`
}

func (h *VizHandlers) GetMetrics(ctx context.Context, _ *mcp.CallToolRequest, input GetMetricsInput) (*mcp.CallToolResult, GetMetricsOutput, error) {
	if input.RecentLeads <= 0 {
		input.RecentLeads = 5
	}
	state := h.svc.Refresh(ctx)
	if state.Err != nil {
		return nil, GetMetricsOutput{}, fmt.Errorf("%s: %w", state.Status, state.Err)
	}

	m := state.Metrics
	return nil, GetMetricsOutput{
		Metrics:        m,
		PipelineValue:  viz.FormatCurrency(m.PipelineValue),
		ConversionRate: viz.FormatPercent(m.ConversionRate),
		LastSync:       viz.FormatLastSync(m.LastSync),
		RecentLeads:    viz.RecentLeads(state.Snapshot, input.RecentLeads),
	}, nil
}

type GenerateGraphInput struct {
	Type string `json:"type,omitempty" jsonschema:"Graph type: pipeline (default) or all"`
}

type GenerateGraphOutput struct {
	GraphType string `json:"graph_type"`
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *VizHandlers) GenerateGraph(ctx context.Context, _ *mcp.CallToolRequest, input GenerateGraphInput) (*mcp.CallToolResult, GenerateGraphOutput, error) {
	if input.Type == "" {
		input.Type = "pipeline"
	}
	state := h.svc.Refresh(ctx)
	if state.Err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("%s: %w", state.Status, state.Err)
	}

	generator := viz.NewGraphGenerator(state.Snapshot)
	var dot string
	var err error
	switch input.Type {
	case "pipeline":
		dot, err = generator.GeneratePipelineGraph()
	case "all":
		dot, err = generator.GenerateCompleteGraph()
	default:
		return nil, GenerateGraphOutput{}, fmt.Errorf("unknown graph type: %s", input.Type)
	}
	if err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	// Count nodes and edges for stats
	nodeCount := strings.Count(dot, "[label=")
	edgeCount := strings.Count(dot, "->")

	return nil, GenerateGraphOutput{
		GraphType: input.Type,
		DOTSource: dot,
		NodeCount: nodeCount,
		EdgeCount: edgeCount,
	}, nil
}
