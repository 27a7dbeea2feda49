package contract

import "testing"

// FuzzRepoIdentityKey checks that identity normalization is total and
// idempotent for arbitrary input.
func FuzzRepoIdentityKey(f *testing.F) {
	f.Add("https://github.com/evamaxfield/repo-statistics.git")
	f.Add("git@github.com:owner/name.git")
	f.Add("./relative/path")
	f.Add("")

	f.Fuzz(func(t *testing.T, identity string) {
		key := RepoIdentityKey(identity)
		if key != RepoIdentityKey(key) {
			t.Errorf("RepoIdentityKey not idempotent for %q: %q vs %q", identity, key, RepoIdentityKey(key))
		}
	})
}

// FuzzResolveBatchSize checks that any accepted batch size lands in [1, total].
func FuzzResolveBatchSize(f *testing.F) {
	f.Add("10", 40)
	f.Add("0.25", 40)
	f.Add("", 0)
	f.Add("garbage", 5)

	f.Fuzz(func(t *testing.T, raw string, total int) {
		if total < 0 || total > 1<<20 {
			t.Skip()
		}
		n, err := ResolveBatchSize(raw, total)
		if err != nil {
			return
		}
		if n < 1 {
			t.Errorf("ResolveBatchSize(%q, %d) = %d, below 1", raw, total, n)
		}
		if total > 0 && n > total {
			t.Errorf("ResolveBatchSize(%q, %d) = %d, above total", raw, total, n)
		}
	})
}
