package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/adx-tools/appledocs-mcp/internal/integration"
	"github.com/mark3labs/mcp-go/mcp"
)

// CacheStatsTool handles the cache_stats MCP tool.
type CacheStatsTool struct {
	integ *integration.Integration
}

// NewCacheStatsTool creates a CacheStatsTool with the given orchestrator.
func NewCacheStatsTool(integ *integration.Integration) *CacheStatsTool {
	return &CacheStatsTool{integ: integ}
}

// Definition returns the MCP tool definition for cache_stats.
func (t *CacheStatsTool) Definition() mcp.Tool {
	return mcp.NewTool("cache_stats",
		mcp.WithDescription(
			"Show documentation cache statistics — cached documents, access counts, "+
				"estimated memory usage, and registered resources.",
		),
	)
}

// Handle processes the cache_stats tool call.
func (t *CacheStatsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cacheStats := t.integ.Cache().Stats()
	regStats := t.integ.Registry().Stats()

	var sb strings.Builder
	sb.WriteString("## Cache Statistics\n\n")
	sb.WriteString(fmt.Sprintf("- **Documents**: %d\n", cacheStats.TotalDocuments))
	sb.WriteString(fmt.Sprintf("- **Total Accesses**: %d\n", cacheStats.TotalAccessCount))
	sb.WriteString(fmt.Sprintf("- **Average Accesses**: %.2f\n", cacheStats.AverageAccessCount))
	sb.WriteString(fmt.Sprintf("- **Estimated Memory**: %d bytes\n", cacheStats.EstimatedMemoryUsage))

	sb.WriteString("\n## Registered Resources\n\n")
	sb.WriteString(fmt.Sprintf("- **Resources**: %d\n", regStats.TotalResources))
	sb.WriteString(fmt.Sprintf("- **Successful Registrations**: %d\n", regStats.SuccessfulRegistrations))
	sb.WriteString(fmt.Sprintf("- **Failed Registrations**: %d\n", regStats.FailedRegistrations))

	if len(regStats.ResourceTypesCount) > 0 {
		types := make([]string, 0, len(regStats.ResourceTypesCount))
		for typ := range regStats.ResourceTypesCount {
			types = append(types, typ)
		}
		sort.Strings(types)
		sb.WriteString("- **By Type**:\n")
		for _, typ := range types {
			sb.WriteString(fmt.Sprintf("  - %s: %d\n", typ, regStats.ResourceTypesCount[typ]))
		}
	}

	return mcp.NewToolResultText(sb.String()), nil
}
