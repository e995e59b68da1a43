// appledocs-mcp: Apple Developer documentation MCP server.
//
// Fetches documentation pages from the Apple Developer JSON API, renders
// them as markdown, caches them with LRU eviction, and exposes cached
// pages as apple-docs:// resources. Also downloads and catalogs
// sample-code projects.
//
// Usage:
//
//	appledocs-mcp serve    # Start MCP server (stdio transport)
package main

import (
	"fmt"
	"os"

	docserver "github.com/adx-tools/appledocs-mcp/internal/server"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("appledocs-mcp v%s\n", docserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	s, cleanup, err := docserver.New()
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// stdout belongs to the stdio transport; diagnostics go to stderr.
	return server.ServeStdio(s)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `appledocs-mcp v%s — Apple Developer documentation MCP server

Usage:
  appledocs-mcp serve    Start the MCP server (stdio transport)

Configuration (environment variables):
  APPLEDOCS_CACHE_SIZE   Max cached documents (default 200, 0 = unlimited)
  APPLEDOCS_AUTO_EVICT   Evict LRU entries when full (default true)
  APPLEDOCS_SAMPLES_DIR  Where sample code is extracted (default ~/.appledocs/samples)

MCP client config:

  {
    "mcpServers": {
      "appledocs": {
        "command": "appledocs-mcp",
        "args": ["serve"]
      }
    }
  }
`, docserver.Version)
}
