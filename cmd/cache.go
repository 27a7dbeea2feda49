package cmd

import (
	"fmt"

	"github.com/evamaxfield/repo-statistics/internal/iocache"
	"github.com/spf13/cobra"
)

// cacheCmd is the parent command for activity cache management.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the activity event cache",
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// cacheStatusCmd reports the state of the activity cache.
var cacheStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show activity cache status",
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		store := cacheManager.GetActivityStore()
		if store == nil {
			return fmt.Errorf("activity cache is not configured")
		}
		status, err := store.GetStatus()
		if err != nil {
			return fmt.Errorf("failed to read cache status: %w", err)
		}
		iocache.PrintCacheStatus(status)
		return nil
	},
}

// cacheClearCmd removes all cached activity events.
var cacheClearCmd = &cobra.Command{
	Use:     "clear",
	Short:   "Clear the activity event cache",
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := iocache.ClearCache(cfg.CacheBackend, iocache.GetDBFilePath(), cfg.CacheDBConnect); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		fmt.Println("Activity cache cleared.")
		return nil
	},
}
