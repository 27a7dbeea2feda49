// Package schema has the data model, metric catalogue and global types
// shared by all parts of repo-statistics.
package schema

import "time"

// FileDelta records the change a single commit made to a single file.
type FileDelta struct {
	Path      string `json:"path"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	IsCode    bool   `json:"is_code"` // Classified as programming source by extension
}

// LinesChanged returns additions plus deletions for this file.
func (d FileDelta) LinesChanged() int {
	return d.Additions + d.Deletions
}

// CommitEvent is the canonical representation of a single commit as produced
// by the normalizer. It is immutable once constructed; derived flags (IsBot,
// IsSubstantial) are set exactly once when the event set is prepared for a
// given analysis window.
type CommitEvent struct {
	Hash          string      `json:"hash"`
	Contributor   string      `json:"contributor"` // Canonical ContributorIdentity key
	Timestamp     time.Time   `json:"timestamp"`   // Always UTC
	Additions     int         `json:"additions"`
	Deletions     int         `json:"deletions"`
	Files         []FileDelta `json:"files"`
	IsBot         bool        `json:"is_bot"`
	IsSubstantial bool        `json:"is_substantial"`
}

// LinesChanged returns additions plus deletions for the whole commit.
func (c CommitEvent) LinesChanged() int {
	return c.Additions + c.Deletions
}

// CodeLinesChanged returns the lines changed in files classified as code.
func (c CommitEvent) CodeLinesChanged() int {
	var total int
	for _, f := range c.Files {
		if f.IsCode {
			total += f.LinesChanged()
		}
	}
	return total
}

// ContributorIdentity is a canonical contributor resolved from raw
// name/email pairs. Identities form an equivalence class over raw authors;
// commits reference identities by Key, never the reverse.
type ContributorIdentity struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TagRecord is a release tag with its semantic-version classification.
type TagRecord struct {
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	IsSemVer  bool      `json:"is_semver"`
}

// EventSet is the complete normalized history of one repository: the input
// to every metric computation. Commits are ordered ascending by timestamp.
type EventSet struct {
	RepoID       string                         `json:"repo_id"`
	Commits      []CommitEvent                  `json:"commits"`
	Contributors map[string]ContributorIdentity `json:"contributors"`
	Tags         []TagRecord                    `json:"tags"`
}

// PlatformMetrics holds hosting-platform counters fetched by the external
// platform collaborator. Merged verbatim into the metric record.
type PlatformMetrics struct {
	StargazersCount int    `json:"stargazers_count"`
	ForksCount      int    `json:"forks_count"`
	WatchersCount   int    `json:"watchers_count"`
	OpenIssuesCount int    `json:"open_issues_count"`
	PrimaryLanguage string `json:"primary_language"`
}

// LinterMetrics holds documentation/CI file presence booleans produced by
// the repository linter collaborator.
type LinterMetrics struct {
	HasLicense      bool `json:"has_license"`
	HasReadme       bool `json:"has_readme"`
	HasChangelog    bool `json:"has_changelog"`
	HasContributing bool `json:"has_contributing"`
	HasCIConfig     bool `json:"has_ci_config"`
}
