package gitclient

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/evamaxfield/repo-statistics/schema"
)

// commitMarker opens each commit header line in the raw log output. Numstat
// paths never start with it.
const commitMarker = "@@commit@@"

// semverRe matches semantic-version tag names with an optional leading 'v'.
var semverRe = regexp.MustCompile(`^v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?$`)

// codeExtensions classifies file deltas as programming source. Everything
// else (docs, data, assets, lockfiles) counts as non-code.
var codeExtensions = map[string]struct{}{
	".go": {}, ".py": {}, ".js": {}, ".jsx": {}, ".ts": {}, ".tsx": {},
	".java": {}, ".c": {}, ".h": {}, ".cpp": {}, ".cc": {}, ".hpp": {},
	".rb": {}, ".rs": {}, ".php": {}, ".cs": {}, ".swift": {}, ".kt": {},
	".scala": {}, ".sh": {}, ".bash": {}, ".pl": {}, ".r": {}, ".m": {},
	".sql": {}, ".lua": {}, ".dart": {}, ".ex": {}, ".exs": {}, ".erl": {},
	".hs": {}, ".ml": {}, ".clj": {}, ".vue": {}, ".svelte": {}, ".zig": {},
}

// IsCodePath reports whether the file path carries a programming source
// extension.
func IsCodePath(path string) bool {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return false
	}
	_, ok := codeExtensions[strings.ToLower(path[idx:])]
	return ok
}

// ParseEvents parses raw 'git log --reverse --numstat' output into a
// normalized event set. Commits come out ordered ascending by timestamp;
// raw author name/email pairs collapse into canonical contributor
// identities keyed by lowercased email (name when the email is empty).
func ParseEvents(raw []byte, repoID string) (*schema.EventSet, error) {
	set := &schema.EventSet{
		RepoID:       repoID,
		Contributors: make(map[string]schema.ContributorIdentity),
	}

	var current *schema.CommitEvent
	flush := func() {
		if current != nil {
			set.Commits = append(set.Commits, *current)
			current = nil
		}
	}

	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}

		if header, ok := strings.CutPrefix(line, commitMarker); ok {
			flush()
			commit, identity, err := parseHeader(header)
			if err != nil {
				return nil, err
			}
			if _, seen := set.Contributors[identity.Key]; !seen {
				set.Contributors[identity.Key] = identity
			}
			current = commit
			continue
		}

		if current == nil {
			continue // Stray content before the first header
		}
		delta, ok := parseNumstatLine(line)
		if !ok {
			continue // Binary file deltas report "-" counts
		}
		current.Files = append(current.Files, delta)
		current.Additions += delta.Additions
		current.Deletions += delta.Deletions
	}
	flush()

	sort.SliceStable(set.Commits, func(i, j int) bool {
		return set.Commits[i].Timestamp.Before(set.Commits[j].Timestamp)
	})

	return set, nil
}

// parseHeader splits "hash|author name|author email|unix time".
func parseHeader(header string) (*schema.CommitEvent, schema.ContributorIdentity, error) {
	parts := strings.SplitN(header, "|", 4)
	if len(parts) != 4 {
		return nil, schema.ContributorIdentity{}, fmt.Errorf("malformed commit header %q", header)
	}
	hash, name, email := parts[0], parts[1], parts[2]

	ts, err := strconv.ParseInt(strings.TrimSpace(parts[3]), 10, 64)
	if err != nil {
		return nil, schema.ContributorIdentity{}, fmt.Errorf("malformed commit timestamp in %q: %w", header, err)
	}

	key := strings.ToLower(strings.TrimSpace(email))
	if key == "" {
		key = strings.ToLower(strings.TrimSpace(name))
	}
	identity := schema.ContributorIdentity{Key: key, Name: name, Email: email}

	commit := &schema.CommitEvent{
		Hash:        hash,
		Contributor: key,
		Timestamp:   time.Unix(ts, 0).UTC(),
	}
	return commit, identity, nil
}

// parseNumstatLine splits "added<TAB>deleted<TAB>path". Binary deltas use
// "-" for both counts and are skipped.
func parseNumstatLine(line string) (schema.FileDelta, bool) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) != 3 {
		return schema.FileDelta{}, false
	}
	additions, err := strconv.Atoi(parts[0])
	if err != nil || additions < 0 {
		return schema.FileDelta{}, false
	}
	deletions, err := strconv.Atoi(parts[1])
	if err != nil || deletions < 0 {
		return schema.FileDelta{}, false
	}
	path := parts[2]
	return schema.FileDelta{
		Path:      path,
		Additions: additions,
		Deletions: deletions,
		IsCode:    IsCodePath(path),
	}, true
}

// ParseTags parses 'git for-each-ref' output lines of the form
// "name|unix time" into tag records with semver classification. Malformed
// lines are skipped rather than failing the whole read.
func ParseTags(raw []byte) []schema.TagRecord {
	var tags []schema.TagRecord
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 2)
		if len(parts) != 2 {
			continue
		}
		ts, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			continue
		}
		tags = append(tags, schema.TagRecord{
			Name:      parts[0],
			Timestamp: time.Unix(ts, 0).UTC(),
			IsSemVer:  semverRe.MatchString(parts[0]),
		})
	}
	return tags
}
