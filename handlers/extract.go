// ABOUTME: Extraction MCP tool handler
// ABOUTME: Implements extract_page over raw HTML, a saved file or a live URL
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/closex/models"
	"github.com/harperreed/closex/scraper"
	"github.com/harperreed/closex/service"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SourceFactory builds a live page source for a URL.
type SourceFactory func(url string) models.PageSource

type ExtractHandlers struct {
	svc       *service.Service
	newSource SourceFactory
}

// NewExtractHandlers wires extract_page. newSource may be nil, in which case
// only html and path inputs are accepted.
func NewExtractHandlers(svc *service.Service, newSource SourceFactory) *ExtractHandlers {
	return &ExtractHandlers{svc: svc, newSource: newSource}
}

type ExtractPageInput struct {
	URL  string `json:"url,omitempty" jsonschema:"Page URL. Rendered in headless Chrome unless html is given, in which case it only classifies the page"`
	HTML string `json:"html,omitempty" jsonschema:"Rendered page HTML to scrape instead of fetching"`
	Path string `json:"path,omitempty" jsonschema:"Path to a saved HTML page"`
}

type ExtractPageOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count"`
	Status  string `json:"status"`
}

func (h *ExtractHandlers) ExtractPage(ctx context.Context, _ *mcp.CallToolRequest, input ExtractPageInput) (*mcp.CallToolResult, ExtractPageOutput, error) {
	var source models.PageSource
	switch {
	case input.HTML != "":
		source = scraper.ReaderSource{Reader: strings.NewReader(input.HTML), URL: input.URL, Name: "mcp upload"}
	case input.Path != "":
		source = scraper.FileSource{Path: input.Path}
	case input.URL != "":
		if h.newSource == nil {
			return nil, ExtractPageOutput{}, fmt.Errorf("live extraction is not available; pass html or path")
		}
		source = h.newSource(input.URL)
	default:
		return nil, ExtractPageOutput{}, fmt.Errorf("one of url, html or path is required")
	}

	resp, state := h.svc.Extract(ctx, models.ExtractRequest{Type: models.ExtractMessageType, Source: source})
	return nil, ExtractPageOutput{
		Success: resp.Success,
		Message: resp.Message,
		Count:   resp.Count,
		Status:  state.Status,
	}, nil
}
