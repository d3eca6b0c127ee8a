// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server for Claude Desktop integration
package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/harperreed/closex/handlers"
	"github.com/harperreed/closex/service"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewMCPServer registers every closex tool, resource and prompt.
func NewMCPServer(svc *service.Service, newSource handlers.SourceFactory, version string) *mcp.Server {
	extractHandlers := handlers.NewExtractHandlers(svc, newSource)
	recordHandlers := handlers.NewRecordHandlers(svc)
	queryHandlers := handlers.NewQueryHandlers(svc)
	vizHandlers := handlers.NewVizHandlers(svc)
	resourceHandlers := handlers.NewResourceHandlers(svc)
	promptHandlers := handlers.NewPromptHandlers(svc)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "closex",
		Version: version,
	}, nil)

	// Register tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_page",
		Description: "Scrape a CRM page (live URL, saved file or raw HTML) and merge its contacts, opportunities and tasks",
	}, extractHandlers.ExtractPage)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_snapshot",
		Description: "Return every stored contact, opportunity and task with the last sync time",
	}, recordHandlers.GetSnapshot)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_metrics",
		Description: "Pipeline value, conversion rate, stage distribution and five-week revenue trend",
	}, vizHandlers.GetMetrics)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_records",
		Description: "Case-insensitive substring search over contacts, opportunities or tasks",
	}, queryHandlers.SearchRecords)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_record",
		Description: "Delete one contact, opportunity or task by ID",
	}, recordHandlers.DeleteRecord)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "clear_data",
		Description: "Remove the whole stored snapshot (requires confirm=true)",
	}, recordHandlers.ClearData)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_graph",
		Description: "Generate a GraphViz graph of the pipeline (type=pipeline) or of every record (type=all)",
	}, vizHandlers.GenerateGraph)

	for _, r := range handlers.Resources {
		server.AddResource(r, resourceHandlers.ReadResource)
	}
	for _, p := range handlers.Prompts {
		server.AddPrompt(p, promptHandlers.GetPrompt)
	}

	return server
}

// MCPCommand starts the MCP server on stdio
func MCPCommand(ctx context.Context, svc *service.Service, newSource handlers.SourceFactory, version string) error {
	log.Info("Starting closex MCP server...")
	server := NewMCPServer(svc, newSource, version)
	return server.Run(ctx, &mcp.StdioTransport{})
}
