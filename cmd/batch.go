package cmd

import (
	"time"

	"github.com/evamaxfield/repo-statistics/core"
	"github.com/evamaxfield/repo-statistics/internal/outwriter"
	"github.com/spf13/cobra"
)

// batchCmd computes metric records for many repositories concurrently.
var batchCmd = &cobra.Command{
	Use:     "batch <repository>...",
	Short:   "Compute sustainability metrics for many repositories",
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}

		start := time.Now()
		result, err := core.RunBatch(rootCtx, cfg, deps)
		if err != nil {
			return err
		}

		return outwriter.NewOutWriter().WriteBatch(result, cfg, time.Since(start))
	},
}
