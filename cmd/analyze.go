package cmd

import (
	"fmt"
	"time"

	"github.com/evamaxfield/repo-statistics/core"
	"github.com/evamaxfield/repo-statistics/internal/gitclient"
	"github.com/evamaxfield/repo-statistics/internal/outwriter"
	"github.com/evamaxfield/repo-statistics/internal/platform"
	"github.com/evamaxfield/repo-statistics/internal/repolinter"
	"github.com/spf13/cobra"
)

// buildDeps assembles the collaborators driven by the validated config.
func buildDeps() (*core.BatchDeps, error) {
	deps := &core.BatchDeps{
		Source:  gitclient.NewLocalCommitSource(),
		Linter:  repolinter.NewFileLinter(),
		Manager: cacheManager,
	}
	if cfg.ComputePlatform {
		client, err := platform.NewGitHubClient(cfg.GithubToken)
		if err != nil {
			return nil, fmt.Errorf("failed to create platform client: %w", err)
		}
		deps.Platform = client
	}
	return deps, nil
}

// analyzeCmd computes the full metric record for a single repository.
var analyzeCmd = &cobra.Command{
	Use:     "analyze <repository>",
	Short:   "Compute sustainability metrics for one repository",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}

		start := time.Now()
		rec, err := core.AnalyzeRepository(rootCtx, cfg, cfg.Repos[0], deps.Source, deps.Platform, deps.Linter, deps.Manager)
		if err != nil {
			return err
		}

		return outwriter.NewOutWriter().WriteRecord(rec, cfg, time.Since(start))
	},
}
