package contract

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepoIdentityKey(t *testing.T) {
	t.Run("remote variants collapse", func(t *testing.T) {
		want := RepoIdentityKey("https://github.com/evamaxfield/repo-statistics")
		assert.Equal(t, want, RepoIdentityKey("https://github.com/evamaxfield/repo-statistics.git"))
		assert.Equal(t, want, RepoIdentityKey("https://github.com/evamaxfield/repo-statistics/"))
		assert.Equal(t, want, RepoIdentityKey("HTTPS://github.com/evamaxfield/repo-statistics"))
	})

	t.Run("local path is cleaned absolute", func(t *testing.T) {
		key := RepoIdentityKey("./some/../repo")
		assert.True(t, filepath.IsAbs(key))
	})
}

func TestIsRemoteIdentity(t *testing.T) {
	assert.True(t, IsRemoteIdentity("https://github.com/a/b"))
	assert.True(t, IsRemoteIdentity("git@github.com:a/b.git"))
	assert.False(t, IsRemoteIdentity("/home/user/repo"))
	assert.False(t, IsRemoteIdentity("./repo"))
}

func TestShortRepoName(t *testing.T) {
	assert.Equal(t, "evamaxfield/repo-statistics",
		ShortRepoName("https://github.com/evamaxfield/repo-statistics.git"))
}

func TestSplitOwnerName(t *testing.T) {
	owner, name, err := SplitOwnerName("https://github.com/evamaxfield/repo-statistics.git")
	require.NoError(t, err)
	assert.Equal(t, "evamaxfield", owner)
	assert.Equal(t, "repo-statistics", name)

	owner, name, err = SplitOwnerName("git@github.com:evamaxfield/repo-statistics.git")
	require.NoError(t, err)
	assert.Equal(t, "evamaxfield", owner)
	assert.Equal(t, "repo-statistics", name)

	_, _, err = SplitOwnerName("/home/user/repo")
	assert.Error(t, err)
}

func TestTruncatePath(t *testing.T) {
	assert.Equal(t, "short", TruncatePath("short", 20))
	got := TruncatePath("a/very/long/path/to/some/file.go", 12)
	assert.Len(t, got, 12)
	assert.Equal(t, "...", got[:3])
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "YES", "true", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}
