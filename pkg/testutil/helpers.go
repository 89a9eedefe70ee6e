package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/linkvault/pkg/types"
)

// Tree describes files to create: a key ending in "/" is a directory, any
// other key is a file holding the value.
type Tree map[string]string

// CreateTree writes tree under root on fsys and returns root
func CreateTree(t *testing.T, fsys types.FS, root string, tree Tree) string {
	t.Helper()

	keys := make([]string, 0, len(tree))
	for k := range tree {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, rel := range keys {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			require.NoError(t, fsys.MkdirAll(path, 0755), "mkdir %s", path)
			continue
		}
		require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, fsys.WriteFile(path, []byte(tree[rel]), 0644), "write %s", path)
	}
	return root
}

// AssertSymlink checks that link is a symlink pointing at dest
func AssertSymlink(t *testing.T, link, dest string) {
	t.Helper()

	info, err := os.Lstat(link)
	require.NoError(t, err, "link %s should exist", link)
	assert.NotZero(t, info.Mode()&os.ModeSymlink, "%s should be a symlink", link)

	got, err := os.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, dest, got)
}

// AssertHardLink checks that a and b are the same file
func AssertHardLink(t *testing.T, a, b string) {
	t.Helper()

	ia, err := os.Stat(a)
	require.NoError(t, err)
	ib, err := os.Stat(b)
	require.NoError(t, err)
	assert.True(t, os.SameFile(ia, ib), "%s and %s should be hard links of one file", a, b)
}

// AssertNotExists checks that nothing, not even a dangling link, is at path
func AssertNotExists(t *testing.T, path string) {
	t.Helper()

	_, err := os.Lstat(path)
	assert.True(t, os.IsNotExist(err), "%s should not exist", path)
}

// EntryTargets returns the sorted targets of entries
func EntryTargets(entries []types.LinkEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Target)
	}
	sort.Strings(out)
	return out
}

// AssertNotExistsFS is AssertNotExists for any types.FS
func AssertNotExistsFS(t *testing.T, fsys types.FS, path string) {
	t.Helper()

	_, err := fsys.Lstat(path)
	assert.True(t, os.IsNotExist(err), "%s should not exist", path)
}
