package cmd

import (
	"fmt"

	"github.com/evamaxfield/repo-statistics/internal/iocache"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// resultsCmd is the parent command for result store management.
var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Manage the persistent metric result store",
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// resultsStatusCmd reports the state of the result store.
var resultsStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show result store status",
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		store := cacheManager.GetResultStore()
		if store == nil {
			return fmt.Errorf("result store is not configured")
		}
		status, err := store.GetStatus()
		if err != nil {
			return fmt.Errorf("failed to read result store status: %w", err)
		}
		iocache.PrintResultStatus(status)
		return nil
	},
}

// resultsClearCmd drops all stored metric records and errors.
var resultsClearCmd = &cobra.Command{
	Use:     "clear",
	Short:   "Clear all stored metric records and repository errors",
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := iocache.ClearResults(cfg.ResultBackend, iocache.GetResultsDBFilePath(), cfg.ResultDBConnect); err != nil {
			return fmt.Errorf("failed to clear results: %w", err)
		}
		fmt.Println("Result store cleared.")
		return nil
	},
}

// resultsExportCmd writes stored results to parquet files.
var resultsExportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Export stored results to parquet files (requires --output-file)",
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return iocache.ExecuteResultsExport(cfg.OutputFile)
	},
}

// resultsMigrateCmd runs schema migrations against the result store.
var resultsMigrateCmd = &cobra.Command{
	Use:     "migrate",
	Short:   "Run result store schema migrations",
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		targetVersion := viper.GetInt("target-version")
		return iocache.MigrateResults(cfg.ResultBackend, cfg.ResultDBConnect, targetVersion)
	},
}
