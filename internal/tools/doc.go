// Package tools implements the MCP tool handlers for the documentation
// proxy.
//
// Each tool receives its dependencies through its struct and exposes a
// Definition/Handle pair compatible with mcp-go. Failures the user can act
// on are reported as tool error results, never as handler errors — the
// transport stays healthy.
package tools
