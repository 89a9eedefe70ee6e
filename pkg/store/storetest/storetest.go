// Package storetest holds the behaviour every store.Backend must show, run
// by each backend's own tests.
package storetest

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/linkvault/pkg/errors"
	"github.com/arthur-debert/linkvault/pkg/store"
)

// Opener returns a fresh, empty backend. The test closes it.
type Opener func(t *testing.T) store.Backend

// RunBackendTests exercises a backend implementation
func RunBackendTests(t *testing.T, open Opener) {
	t.Run("PutGet", func(t *testing.T) { testPutGet(t, open(t)) })
	t.Run("Overwrite", func(t *testing.T) { testOverwrite(t, open(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, open(t)) })
	t.Run("Missing", func(t *testing.T) { testMissing(t, open(t)) })
	t.Run("IterateInKeyOrder", func(t *testing.T) { testIterateOrder(t, open(t)) })
	t.Run("IterateStops", func(t *testing.T) { testIterateStops(t, open(t)) })
	t.Run("TreesAreIsolated", func(t *testing.T) { testIsolation(t, open(t)) })
	t.Run("TreeNames", func(t *testing.T) { testTreeNames(t, open(t)) })
	t.Run("DropTree", func(t *testing.T) { testDropTree(t, open(t)) })
	t.Run("InvalidNames", func(t *testing.T) { testInvalidNames(t, open(t)) })
	t.Run("ConcurrentPuts", func(t *testing.T) { testConcurrentPuts(t, open(t)) })
}

func closeBackend(t *testing.T, b store.Backend) {
	t.Helper()
	require.NoError(t, b.Close())
}

func testPutGet(t *testing.T, b store.Backend) {
	defer closeBackend(t, b)

	require.NoError(t, b.OpenTree("abc123"))
	require.NoError(t, b.Put("abc123", []byte("name"), []byte("dotfiles")))

	value, err := b.Get("abc123", []byte("name"))
	require.NoError(t, err)
	assert.Equal(t, "dotfiles", string(value))

	ok, err := b.HasTree("abc123")
	require.NoError(t, err)
	assert.True(t, ok)
}

func testOverwrite(t *testing.T, b store.Backend) {
	defer closeBackend(t, b)

	require.NoError(t, b.Put("t", []byte("k"), []byte("first")))
	require.NoError(t, b.Put("t", []byte("k"), []byte("second")))

	value, err := b.Get("t", []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(value))
}

func testDelete(t *testing.T, b store.Backend) {
	defer closeBackend(t, b)

	require.NoError(t, b.Put("t", []byte("a"), []byte("1")))
	require.NoError(t, b.Put("t", []byte("b"), []byte("2")))
	require.NoError(t, b.Delete("t", []byte("a")))

	_, err := b.Get("t", []byte("a"))
	assert.ErrorIs(t, err, store.ErrKeyNotFound)
	value, err := b.Get("t", []byte("b"))
	require.NoError(t, err)
	assert.Equal(t, "2", string(value))

	assert.NoError(t, b.Delete("t", []byte("a")), "deleting a missing key is a no-op")
	assert.NoError(t, b.Delete("nowhere", []byte("a")))
}

func testMissing(t *testing.T, b store.Backend) {
	defer closeBackend(t, b)

	_, err := b.Get("nope", []byte("k"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrRecordNotFound))
	assert.ErrorIs(t, err, store.ErrTreeNotFound)

	require.NoError(t, b.OpenTree("empty"))
	_, err = b.Get("empty", []byte("k"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrRecordNotFound))

	err = b.Iterate("nope", func(k, v []byte) error { return nil })
	assert.True(t, errors.IsErrorCode(err, errors.ErrRecordNotFound))

	ok, err := b.HasTree("nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func testIterateOrder(t *testing.T, b store.Backend) {
	defer closeBackend(t, b)

	for _, k := range []string{"30000000", "10000000", "20000000"} {
		require.NoError(t, b.Put("files", []byte(k), []byte("v"+k)))
	}

	var keys, values []string
	err := b.Iterate("files", func(k, v []byte) error {
		keys = append(keys, string(k))
		values = append(values, string(v))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"10000000", "20000000", "30000000"}, keys)
	assert.Equal(t, []string{"v10000000", "v20000000", "v30000000"}, values)
}

func testIterateStops(t *testing.T, b store.Backend) {
	defer closeBackend(t, b)

	for i := 0; i < 5; i++ {
		require.NoError(t, b.Put("t", []byte(fmt.Sprintf("k%d", i)), []byte("v")))
	}
	stop := fmt.Errorf("stop")
	calls := 0
	err := b.Iterate("t", func(k, v []byte) error {
		calls++
		if calls == 2 {
			return stop
		}
		return nil
	})
	assert.Equal(t, stop, err)
	assert.Equal(t, 2, calls)
}

func testIsolation(t *testing.T, b store.Backend) {
	defer closeBackend(t, b)

	// "ab" is a prefix of "abc"; their pairs must not bleed into each other
	require.NoError(t, b.Put("ab", []byte("key"), []byte("short")))
	require.NoError(t, b.Put("abc", []byte("key"), []byte("long")))

	count := 0
	require.NoError(t, b.Iterate("ab", func(k, v []byte) error {
		count++
		assert.Equal(t, "short", string(v))
		return nil
	}))
	assert.Equal(t, 1, count)
}

func testTreeNames(t *testing.T, b store.Backend) {
	defer closeBackend(t, b)

	require.NoError(t, b.OpenTree("zzzzzz"))
	require.NoError(t, b.OpenTree("aaaaaa"))
	require.NoError(t, b.Put("mmmmmm", []byte("k"), []byte("v")))
	require.NoError(t, b.OpenTree("aaaaaa"))

	names, err := b.TreeNames()
	require.NoError(t, err)
	assert.Subset(t, names, []string{"aaaaaa", "mmmmmm", "zzzzzz"})

	seen := map[string]int{}
	for _, n := range names {
		seen[n]++
	}
	assert.Equal(t, 1, seen["aaaaaa"], "opening twice must not duplicate a tree")
	assert.IsNonDecreasing(t, names)
}

func testDropTree(t *testing.T, b store.Backend) {
	defer closeBackend(t, b)

	for i := 0; i < 50; i++ {
		require.NoError(t, b.Put("doomed", []byte(fmt.Sprintf("%08d", i)), []byte("v")))
	}
	require.NoError(t, b.Put("kept", []byte("k"), []byte("v")))

	require.NoError(t, b.DropTree("doomed"))

	ok, err := b.HasTree("doomed")
	require.NoError(t, err)
	assert.False(t, ok)
	names, err := b.TreeNames()
	require.NoError(t, err)
	assert.NotContains(t, names, "doomed")

	value, err := b.Get("kept", []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "v", string(value))

	require.NoError(t, b.DropTree("doomed"), "dropping twice is a no-op")

	// a dropped tree can be recreated empty
	require.NoError(t, b.OpenTree("doomed"))
	count := 0
	require.NoError(t, b.Iterate("doomed", func(k, v []byte) error { count++; return nil }))
	assert.Zero(t, count)
}

func testInvalidNames(t *testing.T, b store.Backend) {
	defer closeBackend(t, b)

	assert.True(t, errors.IsErrorCode(b.OpenTree(""), errors.ErrInvalidInput))
	assert.True(t, errors.IsErrorCode(b.Put("a\x00b", []byte("k"), []byte("v")), errors.ErrInvalidInput))
}

func testConcurrentPuts(t *testing.T, b store.Backend) {
	defer closeBackend(t, b)

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- b.Put("busy", []byte(fmt.Sprintf("%08d", i)), []byte("v"))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	count := 0
	require.NoError(t, b.Iterate("busy", func(k, v []byte) error { count++; return nil }))
	assert.Equal(t, 100, count)
}
