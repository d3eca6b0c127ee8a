// ABOUTME: MCP prompt handlers for pipeline review workflows
// ABOUTME: Builds prompts from the current snapshot and its metrics
package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/closex/service"
	"github.com/harperreed/closex/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Prompts lists every prompt GetPrompt serves.
var Prompts = []*mcp.Prompt{
	{
		Name:        "pipeline-review",
		Description: "Review pipeline health from the scraped opportunities",
	},
	{
		Name:        "lead-follow-up",
		Description: "Suggest next steps for one lead",
		Arguments: []*mcp.PromptArgument{
			{Name: "lead", Description: "Lead (company) name", Required: true},
		},
	},
}

type PromptHandlers struct {
	svc *service.Service
}

func NewPromptHandlers(svc *service.Service) *PromptHandlers {
	return &PromptHandlers{svc: svc}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch request.Params.Name {
	case "pipeline-review":
		return h.getPipelineReviewPrompt(ctx)
	case "lead-follow-up":
		return h.getLeadFollowUpPrompt(ctx, request.Params.Arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func (h *PromptHandlers) getPipelineReviewPrompt(ctx context.Context) (*mcp.GetPromptResult, error) {
	state := h.svc.Refresh(ctx)
	if state.Err != nil {
		return nil, state.Err
	}
	m := viz.Compute(state.Snapshot, time.Now())

	var b strings.Builder
	b.WriteString("Review this sales pipeline and point out risks and next actions.\n\n")
	fmt.Fprintf(&b, "Contacts: %d\nOpportunities: %d\nOpen tasks: %d of %d\n",
		m.TotalContacts, m.TotalOpportunities, m.OpenTasks, m.TotalTasks)
	fmt.Fprintf(&b, "Pipeline value: %s\nConversion rate: %s\n\n",
		viz.FormatCurrency(m.PipelineValue), viz.FormatPercent(m.ConversionRate))
	b.WriteString("Stages:\n")
	for _, s := range m.Stages {
		fmt.Fprintf(&b, "- %s: %d\n", s.Stage, s.Count)
	}
	b.WriteString("\nWeekly closed value:\n")
	for _, w := range m.RevenueTrend {
		fmt.Fprintf(&b, "- %s (%s): %s\n", w.Label, w.Start.Format("2006-01-02"), viz.FormatCurrency(w.Value))
	}

	return promptResult("Pipeline review", b.String()), nil
}

func (h *PromptHandlers) getLeadFollowUpPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	lead := strings.TrimSpace(args["lead"])
	if lead == "" {
		return nil, fmt.Errorf("lead argument is required")
	}
	state := h.svc.Refresh(ctx)
	if state.Err != nil {
		return nil, state.Err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Suggest follow-up actions for the lead %q.\n\n", lead)

	contacts := 0
	b.WriteString("Contacts:\n")
	for _, c := range viz.FilterContacts(state.Snapshot.ContactList(), lead) {
		if !strings.EqualFold(c.Lead, lead) {
			continue
		}
		contacts++
		fmt.Fprintf(&b, "- %s emails=%s phones=%s\n", c.Name, strings.Join(c.Emails, ","), strings.Join(c.Phones, ","))
	}
	if contacts == 0 {
		b.WriteString("- none scraped yet\n")
	}

	b.WriteString("\nOpportunities:\n")
	for _, o := range viz.FilterOpportunities(state.Snapshot.OpportunityList(), lead) {
		fmt.Fprintf(&b, "- %s %s (%s) closes %s\n", o.Name, o.Value, o.Status, o.CloseDate)
	}

	return promptResult("Follow-up for "+lead, b.String()), nil
}

func promptResult(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{
					Text: text,
				},
			},
		},
	}
}
