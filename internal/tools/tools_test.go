package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adx-tools/appledocs-mcp/internal/appledocs"
	"github.com/adx-tools/appledocs-mcp/internal/docs"
	"github.com/adx-tools/appledocs-mcp/internal/integration"
	"github.com/adx-tools/appledocs-mcp/internal/registry"
	"github.com/adx-tools/appledocs-mcp/internal/samples"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// --- Test helpers ---

func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

type nopRegistrar struct{}

func (nopRegistrar) AddResource(mcp.Resource, server.ResourceHandlerFunc) error { return nil }

func newTestIntegration() *integration.Integration {
	cache := docs.NewCache()
	reg := registry.New(cache, nopRegistrar{})
	return integration.New(cache, reg, integration.DefaultConfig(),
		appledocs.ExtractTitle, appledocs.DetectDocType)
}

func testToolCatalog(t *testing.T) *samples.Catalog {
	t.Helper()
	catalog, err := samples.OpenCatalog(t.TempDir())
	if err != nil {
		t.Fatalf("OpenCatalog failed: %v", err)
	}
	t.Cleanup(func() { _ = catalog.Close() })
	return catalog
}

const docPayload = `{
	"metadata": {"title": "MapView", "roleHeading": "Class"},
	"abstract": [{"type": "text", "text": "An embeddable map interface."}],
	"primaryContentSections": [
		{"kind": "content", "content": [
			{"type": "heading", "level": 2, "text": "Overview"},
			{"type": "paragraph", "inlineContent": [{"type": "text", "text": "Displays a map."}]}
		]}
	]
}`

// --- GetDocTool ---

func TestGetDocTool_RequiresURL(t *testing.T) {
	tool := NewGetDocTool(newTestIntegration(), appledocs.NewClient(""))

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if !res.IsError {
		t.Error("missing url should produce a tool error")
	}
}

func TestGetDocTool_FetchesAndCaches(t *testing.T) {
	fetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		_, _ = w.Write([]byte(docPayload))
	}))
	defer srv.Close()

	integ := newTestIntegration()
	tool := NewGetDocTool(integ, appledocs.NewClient(srv.URL))
	req := makeReq(map[string]interface{}{"url": srv.URL + "/documentation/mapkit/mapview"})

	first, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("first Handle failed: %v", err)
	}
	if !strings.Contains(resultText(first), "# MapView") {
		t.Errorf("result should contain rendered title, got:\n%s", resultText(first))
	}
	if strings.Contains(resultText(first), "served from cache") {
		t.Error("first call should not report a cache hit")
	}

	second, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("second Handle failed: %v", err)
	}
	if !strings.Contains(resultText(second), "served from cache") {
		t.Error("second call should report a cache hit")
	}
	if fetches != 1 {
		t.Errorf("page fetched %d times, want 1", fetches)
	}
}

func TestGetDocTool_FreshBypassesCache(t *testing.T) {
	fetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		_, _ = w.Write([]byte(docPayload))
	}))
	defer srv.Close()

	tool := NewGetDocTool(newTestIntegration(), appledocs.NewClient(srv.URL))
	req := makeReq(map[string]interface{}{
		"url":   srv.URL + "/documentation/mapkit/mapview",
		"fresh": true,
	})

	for i := 0; i < 2; i++ {
		if _, err := tool.Handle(context.Background(), req); err != nil {
			t.Fatalf("Handle failed: %v", err)
		}
	}
	if fetches != 2 {
		t.Errorf("page fetched %d times with fresh=true, want 2", fetches)
	}
}

func TestGetDocTool_FetchFailureIsToolError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	tool := NewGetDocTool(newTestIntegration(), appledocs.NewClient(srv.URL))
	req := makeReq(map[string]interface{}{"url": srv.URL + "/documentation/mapkit/mapview"})

	res, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if !res.IsError {
		t.Error("fetch failure should produce a tool error")
	}
	if !strings.Contains(resultText(res), "failed to fetch documentation") {
		t.Errorf("error text = %q", resultText(res))
	}
}

// --- SearchTool ---

func TestSearchTool_RequiresQuery(t *testing.T) {
	tool := NewSearchTool(appledocs.NewClient(""))

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if !res.IsError {
		t.Error("missing query should produce a tool error")
	}
}

func TestSearchTool_FormatsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<a href="/documentation/mapkit/mapview" class="r">MapView</a>`))
	}))
	defer srv.Close()

	tool := NewSearchTool(appledocs.NewClient(srv.URL))
	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{"query": "mapview"}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	text := resultText(res)
	if !strings.Contains(text, "**MapView**") {
		t.Errorf("result should list the hit title, got:\n%s", text)
	}
	if !strings.Contains(text, srv.URL+"/documentation/mapkit/mapview") {
		t.Errorf("result should list the hit URL, got:\n%s", text)
	}
}

func TestSearchTool_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>nothing here</body></html>`))
	}))
	defer srv.Close()

	tool := NewSearchTool(appledocs.NewClient(srv.URL))
	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{"query": "zzz"}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !strings.Contains(resultText(res), "No documentation found") {
		t.Errorf("empty search should say so, got: %s", resultText(res))
	}
}

// --- CacheStatsTool ---

func TestCacheStatsTool_ReportsCounts(t *testing.T) {
	integ := newTestIntegration()
	integ.Cache().Store("https://developer.apple.com/documentation/mapkit/mapview", docs.Fields{
		Markdown: "# MapView", Title: "MapView", DocType: docs.DocTypeAPI,
	})
	integ.Cache().Store("https://developer.apple.com/documentation/uikit/uiview", docs.Fields{
		Markdown: "# UIView", Title: "UIView", DocType: docs.DocTypeAPI,
	})
	integ.Registry().RegisterAll(integ.Cache().ListAll())

	tool := NewCacheStatsTool(integ)
	res, err := tool.Handle(context.Background(), makeReq(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	text := resultText(res)
	if !strings.Contains(text, "**Documents**: 2") {
		t.Errorf("stats should report 2 documents, got:\n%s", text)
	}
	if !strings.Contains(text, "**Resources**: 2") {
		t.Errorf("stats should report 2 resources, got:\n%s", text)
	}
	if !strings.Contains(text, docs.DocTypeAPI+": 2") {
		t.Errorf("stats should break down by type, got:\n%s", text)
	}
}

// --- ClearCacheTool / RefreshResourcesTool ---

func TestClearCacheTool_EmptiesCacheAndRegistry(t *testing.T) {
	integ := newTestIntegration()
	integ.Cache().Store("https://developer.apple.com/documentation/mapkit", docs.Fields{Markdown: "# MapKit"})
	integ.Cache().Store("https://developer.apple.com/documentation/uikit", docs.Fields{Markdown: "# UIKit"})
	integ.Registry().RegisterAll(integ.Cache().ListAll())

	tool := NewClearCacheTool(integ)
	res, err := tool.Handle(context.Background(), makeReq(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if !strings.Contains(resultText(res), "2 document(s)") {
		t.Errorf("result = %q, want removal count", resultText(res))
	}
	if integ.Cache().Size() != 0 {
		t.Errorf("cache size = %d after clear, want 0", integ.Cache().Size())
	}
	if stats := integ.Registry().Stats(); stats.TotalResources != 0 {
		t.Errorf("registry still tracks %d resources after clear", stats.TotalResources)
	}
}

func TestRefreshResourcesTool_ReconcilesRegistry(t *testing.T) {
	integ := newTestIntegration()
	cache := integ.Cache()
	reg := integ.Registry()

	// One stale registration (document evicted) and one unregistered document.
	cache.Store("https://developer.apple.com/documentation/mapkit", docs.Fields{Markdown: "# MapKit"})
	reg.RegisterAll(cache.ListAll())
	cache.DeleteByKey(docs.DeriveKey("https://developer.apple.com/documentation/mapkit"))
	cache.Store("https://developer.apple.com/documentation/uikit", docs.Fields{Markdown: "# UIKit"})

	tool := NewRefreshResourcesTool(integ)
	res, err := tool.Handle(context.Background(), makeReq(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if !strings.Contains(resultText(res), "1 stale removed, 1 registered") {
		t.Errorf("result = %q", resultText(res))
	}
	if !reg.IsRegistered(docs.DeriveKey("https://developer.apple.com/documentation/uikit")) {
		t.Error("refresh should register the cached document")
	}
}

// --- sample tools ---

func TestDownloadSampleTool_RequiresURL(t *testing.T) {
	tool := NewDownloadSampleTool(samples.NewDownloader(testToolCatalog(t)))

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if !res.IsError {
		t.Error("missing url should produce a tool error")
	}
}

func TestListSamplesTool_Empty(t *testing.T) {
	tool := NewListSamplesTool(testToolCatalog(t))

	res, err := tool.Handle(context.Background(), makeReq(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !strings.Contains(resultText(res), "No samples downloaded yet") {
		t.Errorf("result = %q", resultText(res))
	}
}
