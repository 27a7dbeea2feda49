// Package cmd defines the command-line interface for repostat.
package cmd

import (
	"github.com/evamaxfield/repo-statistics/internal/contract"
	"github.com/evamaxfield/repo-statistics/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the results subcommands to the parent results command
	resultsCmd.AddCommand(resultsClearCmd)
	resultsCmd.AddCommand(resultsStatusCmd)
	resultsCmd.AddCommand(resultsExportCmd)
	resultsCmd.AddCommand(resultsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("start", "", "Start of the analysis window in ISO8601 or time ago")
	rootCmd.PersistentFlags().String("end", "", "End of the analysis window in ISO8601 or time ago")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric values")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("github-token", "", "GitHub token for platform metrics")
	rootCmd.PersistentFlags().String("bot-names", "", "Comma-separated name substrings marking bot commits ('none' disables)")
	rootCmd.PersistentFlags().String("bot-emails", "", "Comma-separated email substrings marking bot commits ('none' disables)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Activity cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("results-backend", string(schema.SQLiteBackend), "Result store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("results-db-connect", "", "Database connection string for the result store (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("timeseries", "yes", "Compute weekly/monthly series and episode metrics")
	rootCmd.PersistentFlags().String("contributor-stability", "yes", "Compute contributor stability metrics")
	rootCmd.PersistentFlags().String("absence-factor", "yes", "Compute the contributor absence factor")
	rootCmd.PersistentFlags().String("contributor-distribution", "yes", "Compute contributor distribution metrics")
	rootCmd.PersistentFlags().String("repo-linter", "yes", "Scan the working tree for community health files")
	rootCmd.PersistentFlags().String("tags", "yes", "Compute tag cadence metrics")
	rootCmd.PersistentFlags().String("platform", "no", "Fetch platform metrics from the GitHub API (requires --github-token)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of batchCmd to Viper
	batchCmd.Flags().String("concurrency", string(schema.ThreadPoolMode), "Dispatch mode: sequential, threads, distributed")
	batchCmd.Flags().String("batch-size", "", "Dispatch chunk as an absolute count ('50') or proportion ('0.25')")
	batchCmd.Flags().Bool("ignore-cached-results", false, "Recompute repositories even when a cached result exists")
	if err := viper.BindPFlags(batchCmd.Flags()); err != nil {
		contract.LogFatal("Error binding batch flags", err)
	}

	// Bind all flags of resultsMigrateCmd to Viper
	resultsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(resultsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding results migrate flags", err)
	}
}
