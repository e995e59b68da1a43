package tools

import (
	"context"
	"fmt"

	"github.com/adx-tools/appledocs-mcp/internal/integration"
	"github.com/mark3labs/mcp-go/mcp"
)

// ClearCacheTool handles the clear_cache MCP tool.
type ClearCacheTool struct {
	integ *integration.Integration
}

// NewClearCacheTool creates a ClearCacheTool with the given orchestrator.
func NewClearCacheTool(integ *integration.Integration) *ClearCacheTool {
	return &ClearCacheTool{integ: integ}
}

// Definition returns the MCP tool definition for clear_cache.
func (t *ClearCacheTool) Definition() mcp.Tool {
	return mcp.NewTool("clear_cache",
		mcp.WithDescription(
			"Remove every cached document and unregister the corresponding apple-docs:// resources.",
		),
	)
}

// Handle processes the clear_cache tool call.
func (t *ClearCacheTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cleared := t.integ.Cache().Size()
	t.integ.ClearAll()
	return mcp.NewToolResultText(fmt.Sprintf("Cache cleared: %d document(s) removed.", cleared)), nil
}

// ─── RefreshResourcesTool ───────────────────────────────────────────────────

// RefreshResourcesTool handles the refresh_resources MCP tool.
type RefreshResourcesTool struct {
	integ *integration.Integration
}

// NewRefreshResourcesTool creates a RefreshResourcesTool.
func NewRefreshResourcesTool(integ *integration.Integration) *RefreshResourcesTool {
	return &RefreshResourcesTool{integ: integ}
}

// Definition returns the MCP tool definition for refresh_resources.
func (t *RefreshResourcesTool) Definition() mcp.Tool {
	return mcp.NewTool("refresh_resources",
		mcp.WithDescription(
			"Reconcile registered resources with the document cache: drop registrations for "+
				"evicted documents and register any cached documents that are missing.",
		),
	)
}

// Handle processes the refresh_resources tool call.
func (t *RefreshResourcesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	removed := t.integ.Registry().CleanupStale()
	results := t.integ.Registry().RegisterAll(t.integ.Cache().ListAll())

	registered := 0
	failed := 0
	for _, r := range results {
		if r.RegisteredOk {
			registered++
		} else {
			failed++
		}
	}

	msg := fmt.Sprintf("Resources refreshed: %d stale removed, %d registered", removed, registered)
	if failed > 0 {
		msg += fmt.Sprintf(", %d failed", failed)
	}
	return mcp.NewToolResultText(msg + "."), nil
}
