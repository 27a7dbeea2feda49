// Package gitclient turns a repository identity into a normalized event set
// by shelling out to the local git binary.
package gitclient

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/evamaxfield/repo-statistics/internal/contract"
	"github.com/evamaxfield/repo-statistics/schema"
)

// LocalCommitSource implements contract.CommitSource by executing the local
// 'git' binary installed on the machine.
type LocalCommitSource struct{}

var _ contract.CommitSource = &LocalCommitSource{} // Compile-time check

// NewLocalCommitSource creates a new instance of the local commit source.
func NewLocalCommitSource() *LocalCommitSource {
	return &LocalCommitSource{}
}

// cloneDirPattern names the temporary clone directory after the repository
// so stray directories stay attributable to their source.
func cloneDirPattern(identity string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			return r
		default:
			return '-'
		}
	}, contract.ShortRepoName(identity))
	return "repostat-" + name + "-*"
}

// run executes a git command and returns its stdout output.
func (c *LocalCommitSource) run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.Stderr != nil {
			errMsg := strings.TrimSpace(string(exitErr.Stderr))
			return nil, fmt.Errorf("git command '%s' failed: %s: %w", strings.Join(fullArgs, " "), errMsg, err)
		}
		return nil, fmt.Errorf("could not execute git command (is git installed and in PATH?): %w", err)
	}
	return out, nil
}

// Resolve implements the contract.CommitSource interface. Remote identities
// are cloned into a temporary directory that cleanup removes; local paths
// resolve to their repository root.
func (c *LocalCommitSource) Resolve(ctx context.Context, identity string) (string, func(), error) {
	if contract.IsRemoteIdentity(identity) {
		dir, err := os.MkdirTemp("", cloneDirPattern(identity))
		if err != nil {
			return "", nil, fmt.Errorf("create clone directory: %w", err)
		}
		cleanup := func() { _ = os.RemoveAll(dir) }

		cmd := exec.CommandContext(ctx, "git", "clone", "--quiet", identity, dir)
		if out, err := cmd.CombinedOutput(); err != nil {
			cleanup()
			return "", nil, fmt.Errorf("clone %s: %s: %w", identity, strings.TrimSpace(string(out)), err)
		}
		return dir, cleanup, nil
	}

	out, err := c.run(ctx, identity, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", nil, fmt.Errorf("failed to find git repository root from '%s': %w", identity, err)
	}
	return strings.TrimSpace(string(out)), func() {}, nil
}

// Events implements the contract.CommitSource interface by reading the full
// commit log with per-file numstat deltas and the tag list.
func (c *LocalCommitSource) Events(ctx context.Context, repoPath, repoID string) (*schema.EventSet, error) {
	logOut, err := c.run(ctx, repoPath,
		"log", "--reverse", "--numstat", "--date=unix",
		"--pretty=format:"+commitMarker+"%H|%an|%ae|%ct")
	if err != nil {
		return nil, err
	}

	set, err := ParseEvents(logOut, repoID)
	if err != nil {
		return nil, err
	}

	tagOut, err := c.run(ctx, repoPath,
		"for-each-ref", "refs/tags",
		"--sort=creatordate",
		"--format=%(refname:short)|%(creatordate:unix)")
	if err != nil {
		return nil, err
	}
	set.Tags = ParseTags(tagOut)

	return set, nil
}

// RepoHash implements the contract.CommitSource interface.
func (c *LocalCommitSource) RepoHash(ctx context.Context, repoPath string) (string, error) {
	out, err := c.run(ctx, repoPath, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
