package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/adx-tools/appledocs-mcp/internal/samples"
	"github.com/mark3labs/mcp-go/mcp"
)

// DownloadSampleTool handles the download_sample MCP tool.
type DownloadSampleTool struct {
	downloader *samples.Downloader
}

// NewDownloadSampleTool creates a DownloadSampleTool.
func NewDownloadSampleTool(d *samples.Downloader) *DownloadSampleTool {
	return &DownloadSampleTool{downloader: d}
}

// Definition returns the MCP tool definition for download_sample.
func (t *DownloadSampleTool) Definition() mcp.Tool {
	return mcp.NewTool("download_sample",
		mcp.WithDescription(
			"Download an Apple sample-code ZIP archive, extract it locally, and catalog it. "+
				"Already-downloaded samples are returned from the catalog without re-fetching.",
		),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Direct URL of the sample-code ZIP archive"),
		),
		mcp.WithString("name",
			mcp.Description("Directory name for the extracted sample (default: derived from the archive)"),
		),
	)
}

// Handle processes the download_sample tool call.
func (t *DownloadSampleTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url := req.GetString("url", "")
	if url == "" {
		return mcp.NewToolResultError("'url' is required"), nil
	}
	name := req.GetString("name", "")

	rec, err := t.downloader.Download(ctx, url, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to download sample: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Sample %q downloaded.\nPath: %s\nSize: %d bytes", rec.Name, rec.Path, rec.SizeBytes,
	)), nil
}

// ─── ListSamplesTool ────────────────────────────────────────────────────────

// ListSamplesTool handles the list_samples MCP tool.
type ListSamplesTool struct {
	catalog *samples.Catalog
}

// NewListSamplesTool creates a ListSamplesTool.
func NewListSamplesTool(catalog *samples.Catalog) *ListSamplesTool {
	return &ListSamplesTool{catalog: catalog}
}

// Definition returns the MCP tool definition for list_samples.
func (t *ListSamplesTool) Definition() mcp.Tool {
	return mcp.NewTool("list_samples",
		mcp.WithDescription("List downloaded sample-code projects, newest first."),
	)
}

// Handle processes the list_samples tool call.
func (t *ListSamplesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := t.catalog.List()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list samples: %v", err)), nil
	}
	if len(records) == 0 {
		return mcp.NewToolResultText("No samples downloaded yet."), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Downloaded Samples (%d)\n\n", len(records)))
	for _, r := range records {
		sb.WriteString(fmt.Sprintf("- **%s** — %s (%d bytes, %s)\n",
			r.Name, r.Path, r.SizeBytes, r.DownloadedAt.Format("2006-01-02")))
	}

	return mcp.NewToolResultText(sb.String()), nil
}
