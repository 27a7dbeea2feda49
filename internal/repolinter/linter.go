// Package repolinter scans a working tree for the presence of documentation
// and CI artifacts.
package repolinter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evamaxfield/repo-statistics/internal/contract"
	"github.com/evamaxfield/repo-statistics/schema"
)

// Case-insensitive filename stems checked at the repository root. Extensions
// are ignored so LICENSE, LICENSE.md and LICENSE.txt all count.
var (
	licenseStems      = []string{"license", "licence", "copying"}
	readmeStems       = []string{"readme"}
	changelogStems    = []string{"changelog", "changes", "history", "news", "releases"}
	contributingStems = []string{"contributing", "contribution"}
)

// ciPaths are well-known CI configuration locations relative to the root.
var ciPaths = []string{
	".travis.yml",
	".gitlab-ci.yml",
	".circleci/config.yml",
	"azure-pipelines.yml",
	"Jenkinsfile",
	"appveyor.yml",
	".drone.yml",
}

// FileLinter implements contract.Linter over the local filesystem.
type FileLinter struct{}

var _ contract.Linter = &FileLinter{} // Compile-time check

// NewFileLinter creates a new filesystem linter.
func NewFileLinter() *FileLinter {
	return &FileLinter{}
}

// Scan implements the contract.Linter interface by listing the repository
// root once and matching filename stems.
func (l *FileLinter) Scan(repoPath string) (schema.LinterMetrics, error) {
	entries, err := os.ReadDir(repoPath)
	if err != nil {
		return schema.LinterMetrics{}, fmt.Errorf("scan %s: %w", repoPath, err)
	}

	var lm schema.LinterMetrics
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		stem := fileStem(entry.Name())
		lm.HasLicense = lm.HasLicense || matchesStem(stem, licenseStems)
		lm.HasReadme = lm.HasReadme || matchesStem(stem, readmeStems)
		lm.HasChangelog = lm.HasChangelog || matchesStem(stem, changelogStems)
		lm.HasContributing = lm.HasContributing || matchesStem(stem, contributingStems)
	}

	lm.HasCIConfig = hasCIConfig(repoPath)
	return lm, nil
}

// fileStem lowercases a filename and strips its extension.
func fileStem(name string) string {
	name = strings.ToLower(name)
	if ext := filepath.Ext(name); ext != "" && ext != name {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

func matchesStem(stem string, stems []string) bool {
	for _, s := range stems {
		if stem == s {
			return true
		}
	}
	return false
}

// hasCIConfig checks the well-known CI locations plus a non-empty
// .github/workflows directory.
func hasCIConfig(repoPath string) bool {
	for _, rel := range ciPaths {
		if _, err := os.Stat(filepath.Join(repoPath, rel)); err == nil {
			return true
		}
	}

	workflows, err := os.ReadDir(filepath.Join(repoPath, ".github", "workflows"))
	if err != nil {
		return false
	}
	for _, entry := range workflows {
		name := strings.ToLower(entry.Name())
		if strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".yaml") {
			return true
		}
	}
	return false
}
