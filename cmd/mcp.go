package cmd

import (
	"github.com/evamaxfield/repo-statistics/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd serves the analysis tools over the Model Context Protocol.
var mcpCmd = &cobra.Command{
	Use:     "mcp",
	Short:   "Start an MCP server exposing repository analysis tools over stdio",
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		return mcp.StartMCPServer(rootCtx, cfg, deps)
	},
}
