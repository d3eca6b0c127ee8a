// ABOUTME: Tests for MCP tool, resource and prompt handlers
// ABOUTME: Runs handlers against a service backed by the in-memory store
package handlers

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harperreed/closex/logging"
	"github.com/harperreed/closex/models"
	"github.com/harperreed/closex/service"
	"github.com/harperreed/closex/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const leadsPage = `<table>
  <thead><tr><th>Name</th><th>Status</th><th>Owner</th><th>Contacts</th></tr></thead>
  <tbody>
    <tr class="DataTable_row_a"><td>Acme</td><td>Potential</td><td>Me</td><td>Ann <a href="mailto:ann@acme.com">mail</a></td></tr>
    <tr class="DataTable_row_a"><td>Globex</td><td>Qualified</td><td>Me</td><td>Hank <a href="mailto:hank@globex.com">mail</a></td></tr>
  </tbody>
</table>`

const pipelinePage = `<table>
  <thead><tr><th>Opportunity</th><th>Value</th><th>Status</th><th>Close Date</th></tr></thead>
  <tbody>
    <tr class="DataTable_row_a"><td>Acme</td><td>$1,200</td><td>Won</td><td>2026-10-12</td></tr>
    <tr class="DataTable_row_a"><td>Globex</td><td>$800</td><td>Negotiating</td><td>2026-11-02</td></tr>
  </tbody>
</table>`

func setupTestService(t *testing.T) *service.Service {
	t.Helper()
	logger := logging.Discard()
	svc := service.New(store.NewGateway(store.NewMemoryBackend(), "", logger), logger)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func seed(t *testing.T, svc *service.Service) {
	t.Helper()
	h := NewExtractHandlers(svc, nil)
	for url, page := range map[string]string{
		"https://app.close.com/leads/":         leadsPage,
		"https://app.close.com/opportunities/": pipelinePage,
	} {
		_, out, err := h.ExtractPage(context.Background(), nil, ExtractPageInput{URL: url, HTML: page})
		if err != nil {
			t.Fatalf("ExtractPage failed: %v", err)
		}
		if !out.Success {
			t.Fatalf("ExtractPage not successful: %s", out.Message)
		}
	}
}

type fakeSource struct {
	url string
}

func (f fakeSource) Fetch(ctx context.Context) (*models.Page, error) {
	return &models.Page{URL: f.url, HTML: leadsPage}, nil
}

func (f fakeSource) Describe() string { return f.url }

func TestExtractPageFromHTML(t *testing.T) {
	svc := setupTestService(t)
	h := NewExtractHandlers(svc, nil)

	_, out, err := h.ExtractPage(context.Background(), nil, ExtractPageInput{
		URL:  "https://app.close.com/leads/",
		HTML: leadsPage,
	})
	if err != nil {
		t.Fatalf("ExtractPage failed: %v", err)
	}
	if !out.Success || out.Count != 2 {
		t.Errorf("expected 2 records, got %+v", out)
	}
	if out.Message != "Extracted 2 contacts." {
		t.Errorf("unexpected message %q", out.Message)
	}
}

func TestExtractPageFromPath(t *testing.T) {
	svc := setupTestService(t)
	h := NewExtractHandlers(svc, nil)

	path := filepath.Join(t.TempDir(), "leads.html")
	if err := os.WriteFile(path, []byte(leadsPage), 0644); err != nil {
		t.Fatal(err)
	}

	_, out, err := h.ExtractPage(context.Background(), nil, ExtractPageInput{Path: path})
	if err != nil {
		t.Fatalf("ExtractPage failed: %v", err)
	}
	if !out.Success {
		t.Errorf("expected success, got %+v", out)
	}
}

func TestExtractPageFromURLUsesFactory(t *testing.T) {
	svc := setupTestService(t)
	var requested string
	h := NewExtractHandlers(svc, func(url string) models.PageSource {
		requested = url
		return fakeSource{url: url}
	})

	_, out, err := h.ExtractPage(context.Background(), nil, ExtractPageInput{URL: "https://app.close.com/leads/"})
	if err != nil {
		t.Fatalf("ExtractPage failed: %v", err)
	}
	if requested != "https://app.close.com/leads/" {
		t.Errorf("factory got %q", requested)
	}
	if out.Count != 2 {
		t.Errorf("expected 2 records, got %d", out.Count)
	}
}

func TestExtractPageInputErrors(t *testing.T) {
	svc := setupTestService(t)
	h := NewExtractHandlers(svc, nil)

	if _, _, err := h.ExtractPage(context.Background(), nil, ExtractPageInput{}); err == nil {
		t.Error("expected error with no input")
	}
	if _, _, err := h.ExtractPage(context.Background(), nil, ExtractPageInput{URL: "https://app.close.com/leads/"}); err == nil {
		t.Error("expected error for URL without a source factory")
	}

	_, out, err := h.ExtractPage(context.Background(), nil, ExtractPageInput{Path: "/does/not/exist.html"})
	if err != nil {
		t.Fatalf("unreachable file should be reported in the output, got %v", err)
	}
	if out.Success || out.Status != models.StatusNotReachable {
		t.Errorf("unexpected output %+v", out)
	}
}

func TestGetSnapshot(t *testing.T) {
	svc := setupTestService(t)
	seed(t, svc)
	h := NewRecordHandlers(svc)

	_, out, err := h.GetSnapshot(context.Background(), nil, GetSnapshotInput{})
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if len(out.Contacts) != 2 || len(out.Opportunities) != 2 {
		t.Errorf("unexpected snapshot sizes: %d contacts, %d opportunities", len(out.Contacts), len(out.Opportunities))
	}
	if out.LastSync == 0 {
		t.Error("LastSync should be stamped")
	}
}

func TestDeleteRecord(t *testing.T) {
	svc := setupTestService(t)
	seed(t, svc)
	h := NewRecordHandlers(svc)

	_, out, err := h.DeleteRecord(context.Background(), nil, DeleteRecordInput{Kind: "contact", ID: "ann@acme.com"})
	if err != nil {
		t.Fatalf("DeleteRecord failed: %v", err)
	}
	if out.Contacts != 1 {
		t.Errorf("expected 1 contact left, got %d", out.Contacts)
	}
	if out.Status != "Deleted contact ann@acme.com." {
		t.Errorf("unexpected status %q", out.Status)
	}

	_, out, err = h.DeleteRecord(context.Background(), nil, DeleteRecordInput{Kind: "contacts", ID: "nobody"})
	if err != nil {
		t.Fatalf("deleting an absent id should not fail: %v", err)
	}
	if out.Contacts != 1 {
		t.Error("absent delete must not change records")
	}

	if _, _, err := h.DeleteRecord(context.Background(), nil, DeleteRecordInput{Kind: "contacts"}); err == nil {
		t.Error("expected error without id")
	}
	if _, _, err := h.DeleteRecord(context.Background(), nil, DeleteRecordInput{Kind: "companies", ID: "x"}); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestClearData(t *testing.T) {
	svc := setupTestService(t)
	seed(t, svc)
	h := NewRecordHandlers(svc)

	if _, _, err := h.ClearData(context.Background(), nil, ClearDataInput{}); err == nil {
		t.Fatal("expected error without confirm")
	}

	_, out, err := h.ClearData(context.Background(), nil, ClearDataInput{Confirm: true})
	if err != nil {
		t.Fatalf("ClearData failed: %v", err)
	}
	if out.Contacts != 0 || out.Opps != 0 || out.LastSync != 0 {
		t.Errorf("expected empty snapshot, got %+v", out)
	}
	if out.Status != models.StatusWiped {
		t.Errorf("unexpected status %q", out.Status)
	}
}

func TestSearchRecords(t *testing.T) {
	svc := setupTestService(t)
	seed(t, svc)
	h := NewQueryHandlers(svc)

	_, out, err := h.SearchRecords(context.Background(), nil, SearchRecordsInput{Query: "ACME"})
	if err != nil {
		t.Fatalf("SearchRecords failed: %v", err)
	}
	if len(out.Contacts) != 1 || len(out.Opportunities) != 1 {
		t.Errorf("expected one contact and one opportunity, got %+v", out)
	}
	if out.Count != 2 {
		t.Errorf("expected count 2, got %d", out.Count)
	}

	_, out, err = h.SearchRecords(context.Background(), nil, SearchRecordsInput{Kind: "opportunities", Limit: 1})
	if err != nil {
		t.Fatalf("SearchRecords failed: %v", err)
	}
	if len(out.Opportunities) != 1 || len(out.Contacts) != 0 {
		t.Errorf("limit and kind not applied: %+v", out)
	}

	if _, _, err := h.SearchRecords(context.Background(), nil, SearchRecordsInput{Kind: "deals"}); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestGetMetrics(t *testing.T) {
	svc := setupTestService(t)
	seed(t, svc)
	h := NewVizHandlers(svc)

	_, out, err := h.GetMetrics(context.Background(), nil, GetMetricsInput{RecentLeads: 1})
	if err != nil {
		t.Fatalf("GetMetrics failed: %v", err)
	}
	if out.Metrics.PipelineValue != 2000 {
		t.Errorf("expected pipeline value 2000, got %v", out.Metrics.PipelineValue)
	}
	if out.PipelineValue != "$2,000" {
		t.Errorf("unexpected formatted value %q", out.PipelineValue)
	}
	if out.ConversionRate != "50.0%" {
		t.Errorf("unexpected conversion rate %q", out.ConversionRate)
	}
	if len(out.RecentLeads) != 1 {
		t.Errorf("expected 1 recent lead, got %d", len(out.RecentLeads))
	}
}

func TestGenerateGraph(t *testing.T) {
	svc := setupTestService(t)
	seed(t, svc)
	h := NewVizHandlers(svc)

	_, out, err := h.GenerateGraph(context.Background(), nil, GenerateGraphInput{})
	if err != nil {
		t.Fatalf("GenerateGraph failed: %v", err)
	}
	if out.GraphType != "pipeline" {
		t.Errorf("default graph type should be pipeline, got %q", out.GraphType)
	}
	if !strings.Contains(out.DOTSource, "digraph") {
		t.Error("DOT source should be a digraph")
	}
	if out.EdgeCount == 0 {
		t.Error("pipeline graph should link stages to opportunities")
	}

	if _, _, err := h.GenerateGraph(context.Background(), nil, GenerateGraphInput{Type: "company"}); err == nil {
		t.Error("expected error for unknown graph type")
	}
}

func TestReadResource(t *testing.T) {
	svc := setupTestService(t)
	seed(t, svc)
	h := NewResourceHandlers(svc)

	for _, r := range Resources {
		res, err := h.ReadResource(context.Background(), &mcp.ReadResourceRequest{
			Params: &mcp.ReadResourceParams{URI: r.URI},
		})
		if err != nil {
			t.Fatalf("ReadResource(%s) failed: %v", r.URI, err)
		}
		if len(res.Contents) != 1 || !json.Valid([]byte(res.Contents[0].Text)) {
			t.Errorf("%s should return one JSON document", r.URI)
		}
	}

	res, err := h.ReadResource(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "closex://contacts"},
	})
	if err != nil {
		t.Fatal(err)
	}
	var contacts []models.Contact
	if err := json.Unmarshal([]byte(res.Contents[0].Text), &contacts); err != nil {
		t.Fatal(err)
	}
	if len(contacts) != 2 || contacts[0].Name != "Ann" {
		t.Errorf("contacts resource should be sorted by name, got %+v", contacts)
	}

	if _, err := h.ReadResource(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "crm://contacts"},
	}); err == nil {
		t.Error("expected error for foreign scheme")
	}
	if _, err := h.ReadResource(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "closex://companies"},
	}); err == nil {
		t.Error("expected error for unknown resource")
	}
}

func TestGetPrompt(t *testing.T) {
	svc := setupTestService(t)
	seed(t, svc)
	h := NewPromptHandlers(svc)

	res, err := h.GetPrompt(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{Name: "pipeline-review"},
	})
	if err != nil {
		t.Fatalf("pipeline-review failed: %v", err)
	}
	text := res.Messages[0].Content.(*mcp.TextContent).Text
	if !strings.Contains(text, "Opportunities: 2") || !strings.Contains(text, "Negotiating: 1") {
		t.Errorf("pipeline review missing counts:\n%s", text)
	}

	res, err = h.GetPrompt(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{Name: "lead-follow-up", Arguments: map[string]string{"lead": "acme"}},
	})
	if err != nil {
		t.Fatalf("lead-follow-up failed: %v", err)
	}
	text = res.Messages[0].Content.(*mcp.TextContent).Text
	if !strings.Contains(text, "Ann") || !strings.Contains(text, "$1,200") {
		t.Errorf("follow-up prompt missing lead data:\n%s", text)
	}

	if _, err := h.GetPrompt(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{Name: "lead-follow-up"},
	}); err == nil {
		t.Error("expected error without lead argument")
	}
	if _, err := h.GetPrompt(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{Name: "nope"},
	}); err == nil {
		t.Error("expected error for unknown prompt")
	}
}
