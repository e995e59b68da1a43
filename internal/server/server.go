// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates the concrete cache, registry,
// orchestrator, clients, and catalog, and injects them into the tools that
// depend on them. No business logic lives here — only wiring.
package server

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/adx-tools/appledocs-mcp/internal/appledocs"
	"github.com/adx-tools/appledocs-mcp/internal/docs"
	"github.com/adx-tools/appledocs-mcp/internal/integration"
	"github.com/adx-tools/appledocs-mcp/internal/registry"
	"github.com/adx-tools/appledocs-mcp/internal/samples"
	"github.com/adx-tools/appledocs-mcp/internal/tools"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Environment variables read at startup.
const (
	envCacheSize  = "APPLEDOCS_CACHE_SIZE"
	envAutoEvict  = "APPLEDOCS_AUTO_EVICT"
	envSamplesDir = "APPLEDOCS_SAMPLES_DIR"
	envBaseURL    = "APPLEDOCS_BASE_URL"
)

// New creates and configures the MCP server with all tools registered.
// This is the single place where all dependencies are resolved.
//
// The returned cleanup function closes the samples catalog database and
// must be called on shutdown (typically via defer). It is always non-nil
// and safe to call even if the catalog failed to open.
func New() (*server.MCPServer, func(), error) {
	cfg := configFromEnv()

	s := server.NewMCPServer(
		"appledocs",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Documentation cache, registry, and orchestrator ---

	cache := docs.NewCache()
	reg := registry.New(cache, registry.NewServerRegistrar(s))
	integ := integration.New(cache, reg, cfg,
		appledocs.ExtractTitle, appledocs.DetectDocType)

	client := appledocs.NewClient(os.Getenv(envBaseURL))

	// --- Register documentation tools ---

	getDoc := tools.NewGetDocTool(integ, client)
	s.AddTool(getDoc.Definition(), getDoc.Handle)

	search := tools.NewSearchTool(client)
	s.AddTool(search.Definition(), search.Handle)

	stats := tools.NewCacheStatsTool(integ)
	s.AddTool(stats.Definition(), stats.Handle)

	clear := tools.NewClearCacheTool(integ)
	s.AddTool(clear.Definition(), clear.Handle)

	refresh := tools.NewRefreshResourcesTool(integ)
	s.AddTool(refresh.Definition(), refresh.Handle)

	// --- Register sample-code tools ---
	//
	// The samples subsystem is independent: if its catalog fails to open,
	// documentation tools keep working. We log a warning to stderr and
	// skip sample tool registration.

	cleanup := noop
	catalog, catalogErr := samples.OpenCatalog(samplesDir())
	if catalogErr != nil {
		fmt.Fprintf(os.Stderr, "WARNING: sample downloads disabled: %v\n", catalogErr)
	} else {
		cleanup = func() {
			if err := catalog.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "WARNING: samples catalog close: %v\n", err)
			}
		}

		download := tools.NewDownloadSampleTool(samples.NewDownloader(catalog))
		s.AddTool(download.Definition(), download.Handle)

		list := tools.NewListSamplesTool(catalog)
		s.AddTool(list.Definition(), list.Handle)
	}

	return s, cleanup, nil
}

// noop is the default cleanup when the samples catalog is unavailable.
func noop() {}

// configFromEnv builds the orchestrator configuration, starting from the
// defaults and applying environment overrides.
func configFromEnv() integration.Config {
	cfg := integration.DefaultConfig()

	if v := os.Getenv(envCacheSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxCacheSize = n
		} else {
			fmt.Fprintf(os.Stderr, "WARNING: ignoring invalid %s=%q\n", envCacheSize, v)
		}
	}
	if v := os.Getenv(envAutoEvict); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AutoEvict = b
		} else {
			fmt.Fprintf(os.Stderr, "WARNING: ignoring invalid %s=%q\n", envAutoEvict, v)
		}
	}
	return cfg
}

// samplesDir resolves where sample archives are extracted. Defaults to
// ~/.appledocs/samples, falling back to the working directory when the
// home directory cannot be determined.
func samplesDir() string {
	if dir := os.Getenv(envSamplesDir); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".appledocs", "samples")
	}
	return filepath.Join(home, ".appledocs", "samples")
}

// serverInstructions returns the usage guidance sent to MCP clients.
func serverInstructions() string {
	return `You have access to appledocs, an Apple Developer documentation MCP server.

## Tools

- get_apple_doc: Fetch a documentation page as markdown. Results are cached;
  pass fresh=true to force a refetch. Cached pages are also exposed as
  apple-docs:// resources you can read directly.
- search_apple_docs: Search the documentation. Pass a result URL to
  get_apple_doc to read the page.
- download_sample: Download and extract an Apple sample-code ZIP archive.
- list_samples: List previously downloaded samples.
- cache_stats: Inspect cache and resource-registry statistics.
- clear_cache: Drop all cached documents and their resources.
- refresh_resources: Reconcile resources with the cache after bulk changes.

## Workflow

1. search_apple_docs to find relevant pages
2. get_apple_doc on the URLs you need — repeated reads are free (cached)
3. download_sample when a page references a sample-code project

Prefer re-reading the apple-docs:// resource of an already-fetched page over
calling get_apple_doc again.`
}
