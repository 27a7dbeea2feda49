package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/evamaxfield/repo-statistics/core"
	"github.com/evamaxfield/repo-statistics/internal/contract"
	"github.com/evamaxfield/repo-statistics/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	deps    *core.BatchDeps
}

// applyWindow parses the optional start/end arguments into the config window.
func applyWindow(cfg *contract.Config, request mcp.CallToolRequest) error {
	now := time.Now().UTC()
	if s := request.GetString("start", ""); s != "" {
		t, err := contract.ParseTimeBound(s, now)
		if err != nil {
			return fmt.Errorf("invalid start bound: %w", err)
		}
		cfg.StartTime = t
	}
	if e := request.GetString("end", ""); e != "" {
		t, err := contract.ParseTimeBound(e, now)
		if err != nil {
			return fmt.Errorf("invalid end bound: %w", err)
		}
		cfg.EndTime = t
	}
	if !cfg.StartTime.IsZero() && !cfg.EndTime.IsZero() && !cfg.StartTime.Before(cfg.EndTime) {
		return fmt.Errorf("start bound must be before end bound")
	}
	return nil
}

func (h *toolHandler) handleAnalyzeRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repo := strings.TrimSpace(request.GetString("repo", ""))
	if repo == "" {
		return mcp.NewToolResultError("repo is required"), nil
	}

	cfg := h.baseCfg.Clone()
	cfg.Repos = []string{repo}
	if err := applyWindow(cfg, request); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rec, err := core.AnalyzeRepository(ctx, cfg, repo, h.deps.Source, h.deps.Platform, h.deps.Linter, h.deps.Manager)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(rec, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleAnalyzeBatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var repos []string
	for _, r := range strings.Split(request.GetString("repos", ""), ",") {
		if r = strings.TrimSpace(r); r != "" {
			repos = append(repos, r)
		}
	}
	if len(repos) == 0 {
		return mcp.NewToolResultError("repos is required"), nil
	}

	cfg := h.baseCfg.Clone()
	cfg.Repos = repos
	if w := request.GetInt("workers", 0); w > 0 {
		cfg.Workers = w
	}
	if err := applyWindow(cfg, request); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := core.RunBatch(ctx, cfg, h.deps)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("batch failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetCacheStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.deps == nil || h.deps.Manager == nil {
		return mcp.NewToolResultError("caching is not configured"), nil
	}

	type statusReport struct {
		Activity *schema.CacheStatus       `json:"activity,omitempty"`
		Results  *schema.ResultStoreStatus `json:"results,omitempty"`
	}
	var report statusReport

	if store := h.deps.Manager.GetActivityStore(); store != nil {
		status, err := store.GetStatus()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("activity cache status failed: %v", err)), nil
		}
		report.Activity = &status
	}
	if store := h.deps.Manager.GetResultStore(); store != nil {
		status, err := store.GetStatus()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("result store status failed: %v", err)), nil
		}
		report.Results = &status
	}

	jsonData, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
