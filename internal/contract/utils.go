package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the activity cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".repostat_cache.db"
	}
	return filepath.Join(homeDir, ".repostat_cache.db")
}

// GetResultsDBFilePath returns the path to the SQLite DB file for the result tables.
func GetResultsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".repostat_results.db"
	}
	return filepath.Join(homeDir, ".repostat_results.db")
}

// RepoIdentityKey normalizes a repository identity (local path or remote URL)
// into the stable key used for cache partitioning and result table rows.
// Equivalent spellings of the same remote (trailing slash, .git suffix,
// scheme case) collapse to one key; local paths are cleaned absolute paths.
func RepoIdentityKey(identity string) string {
	id := strings.TrimSpace(identity)
	if IsRemoteIdentity(id) {
		id = strings.TrimSuffix(id, "/")
		id = strings.TrimSuffix(id, ".git")
		if i := strings.Index(id, "://"); i >= 0 {
			id = strings.ToLower(id[:i]) + id[i:]
		}
		return id
	}
	abs, err := filepath.Abs(id)
	if err != nil {
		return filepath.Clean(id)
	}
	return filepath.Clean(abs)
}

// IsRemoteIdentity reports whether the identity names a remote repository
// rather than a local working tree.
func IsRemoteIdentity(identity string) bool {
	return strings.Contains(identity, "://") || strings.HasPrefix(identity, "git@")
}

// ShortRepoName returns the trailing owner/name pair of an identity for
// display purposes.
func ShortRepoName(identity string) string {
	key := RepoIdentityKey(identity)
	key = strings.ReplaceAll(key, "\\", "/")
	parts := strings.Split(key, "/")
	if len(parts) >= 2 {
		return parts[len(parts)-2] + "/" + parts[len(parts)-1]
	}
	return key
}

// SplitOwnerName extracts the platform owner and repository name from a
// remote identity like https://github.com/owner/name.
func SplitOwnerName(identity string) (owner, name string, err error) {
	key := RepoIdentityKey(identity)
	if !IsRemoteIdentity(key) {
		return "", "", fmt.Errorf("cannot derive owner/name from local path %q", identity)
	}
	trimmed := key
	if i := strings.Index(trimmed, "://"); i >= 0 {
		trimmed = trimmed[i+3:]
	}
	trimmed = strings.TrimPrefix(trimmed, "git@")
	trimmed = strings.ReplaceAll(trimmed, ":", "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) < 3 {
		return "", "", fmt.Errorf("remote identity %q has no owner/name segments", identity)
	}
	return parts[len(parts)-2], parts[len(parts)-1], nil
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 so there is space for both the "..." prefix and at
// least one character of content.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
