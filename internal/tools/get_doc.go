package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/adx-tools/appledocs-mcp/internal/appledocs"
	"github.com/adx-tools/appledocs-mcp/internal/integration"
	"github.com/mark3labs/mcp-go/mcp"
)

// GetDocTool handles the get_apple_doc MCP tool.
type GetDocTool struct {
	integ  *integration.Integration
	client *appledocs.Client
}

// NewGetDocTool creates a GetDocTool with the given orchestrator and client.
func NewGetDocTool(integ *integration.Integration, client *appledocs.Client) *GetDocTool {
	return &GetDocTool{integ: integ, client: client}
}

// Definition returns the MCP tool definition for get_apple_doc.
func (t *GetDocTool) Definition() mcp.Tool {
	return mcp.NewTool("get_apple_doc",
		mcp.WithDescription(
			"Fetch an Apple Developer documentation page and return it as markdown. "+
				"Results are cached; repeated requests for the same URL are served from the cache "+
				"and exposed as apple-docs:// resources.",
		),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Documentation page URL (e.g. https://developer.apple.com/documentation/mapkit/mapview)"),
		),
		mcp.WithBoolean("fresh",
			mcp.Description("Bypass the cache and fetch the page again (default: false)"),
		),
	)
}

// Handle processes the get_apple_doc tool call.
func (t *GetDocTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url := req.GetString("url", "")
	if url == "" {
		return mcp.NewToolResultError("'url' is required"), nil
	}
	fresh := req.GetBool("fresh", false)

	format := func(ctx context.Context) (integration.FormatResult, error) {
		markdown, err := t.client.FetchMarkdown(ctx, url)
		if err != nil {
			return integration.FormatResult{}, err
		}
		return integration.FormatResult{Content: markdown}, nil
	}

	result, err := t.integ.CacheAwareFormat(ctx, url, format, integration.Options{SkipCache: fresh})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch documentation: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString(result.Content)

	var notes []string
	if result.FromCache {
		notes = append(notes, "served from cache")
	}
	if result.ResourceURI != "" {
		notes = append(notes, "resource: "+result.ResourceURI)
	}
	if result.Err != "" {
		notes = append(notes, result.Err)
	}
	if len(notes) > 0 {
		sb.WriteString("\n\n---\n*")
		sb.WriteString(strings.Join(notes, " · "))
		sb.WriteString("*\n")
	}

	return mcp.NewToolResultText(sb.String()), nil
}
