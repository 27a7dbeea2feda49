// Package platform fetches hosting-platform metadata through the GitHub
// REST API.
package platform

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github.com/evamaxfield/repo-statistics/internal/contract"
	"github.com/evamaxfield/repo-statistics/schema"
)

// GitHubClient is the concrete implementation of contract.PlatformClient.
type GitHubClient struct {
	rest *github.Client
}

var _ contract.PlatformClient = &GitHubClient{} // Compile-time check

// NewGitHubClient builds an authenticated client with client-side secondary
// rate-limit handling.
func NewGitHubClient(token string) (*GitHubClient, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil,
		github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubClient{rest: github.NewClient(httpClient)}, nil
}

// Fetch implements the contract.PlatformClient interface by reading the
// repository resource.
func (c *GitHubClient) Fetch(ctx context.Context, owner, name string) (schema.PlatformMetrics, error) {
	repo, _, err := c.rest.Repositories.Get(ctx, owner, name)
	if err != nil {
		return schema.PlatformMetrics{}, fmt.Errorf("fetch repository %s/%s: %w", owner, name, err)
	}
	return schema.PlatformMetrics{
		StargazersCount: repo.GetStargazersCount(),
		ForksCount:      repo.GetForksCount(),
		WatchersCount:   repo.GetSubscribersCount(),
		OpenIssuesCount: repo.GetOpenIssuesCount(),
		PrimaryLanguage: repo.GetLanguage(),
	}, nil
}
