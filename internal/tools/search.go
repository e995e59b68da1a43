package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/adx-tools/appledocs-mcp/internal/appledocs"
	"github.com/mark3labs/mcp-go/mcp"
)

// SearchTool handles the search_apple_docs MCP tool.
type SearchTool struct {
	client *appledocs.Client
}

// NewSearchTool creates a SearchTool with the given client.
func NewSearchTool(client *appledocs.Client) *SearchTool {
	return &SearchTool{client: client}
}

// Definition returns the MCP tool definition for search_apple_docs.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("search_apple_docs",
		mcp.WithDescription(
			"Search Apple Developer documentation and return matching pages. "+
				"Pass a result URL to get_apple_doc to read the page.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search terms (e.g. 'MKMapView annotations')"),
		),
	)
}

// Handle processes the search_apple_docs tool call.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}

	results, err := t.client.Search(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No documentation found for %q.", query)), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Results for %q\n\n", query))
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("- **%s**\n  %s\n", r.Title, r.URL))
	}

	return mcp.NewToolResultText(sb.String()), nil
}
