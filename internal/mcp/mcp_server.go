// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/evamaxfield/repo-statistics/core"
	"github.com/evamaxfield/repo-statistics/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the repo-statistics MCP server
// without starting it. This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, deps *core.BatchDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"Repo Statistics Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		deps:    deps,
	}

	// --- 1. Tool: analyze_repository ---
	s.AddTool(mcp.NewTool("analyze_repository",
		mcp.WithDescription("Compute the full sustainability metric record for a single repository."),
		mcp.WithString("repo", mcp.Description("Local path or remote URL of the repository to analyze."), mcp.Required()),
		mcp.WithString("start", mcp.Description("Start of the analysis window (ISO8601 or relative, e.g. '2 years ago').")),
		mcp.WithString("end", mcp.Description("End of the analysis window (ISO8601 or relative).")),
	), h.handleAnalyzeRepository)

	// --- 2. Tool: analyze_batch ---
	s.AddTool(mcp.NewTool("analyze_batch",
		mcp.WithDescription("Compute metric records for many repositories concurrently with cached-result reuse."),
		mcp.WithString("repos", mcp.Description("Comma-separated repository paths or URLs."), mcp.Required()),
		mcp.WithString("start", mcp.Description("Start of the analysis window (ISO8601 or relative).")),
		mcp.WithString("end", mcp.Description("End of the analysis window (ISO8601 or relative).")),
		mcp.WithNumber("workers", mcp.Description("Number of concurrent workers.")),
	), h.handleAnalyzeBatch)

	// --- 3. Tool: get_cache_status ---
	s.AddTool(mcp.NewTool("get_cache_status",
		mcp.WithDescription("Report the status of the activity cache and the persistent result store."),
	), h.handleGetCacheStatus)

	return s
}

// StartMCPServer starts the repo-statistics MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, deps *core.BatchDeps) error {
	s := NewMCPServer(baseCfg, deps)
	return server.ServeStdio(s)
}
