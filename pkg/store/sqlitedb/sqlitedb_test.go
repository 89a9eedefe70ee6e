package sqlitedb_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/linkvault/pkg/errors"
	"github.com/arthur-debert/linkvault/pkg/store"
	"github.com/arthur-debert/linkvault/pkg/store/sqlitedb"
	"github.com/arthur-debert/linkvault/pkg/store/storetest"
)

func TestBackendContract(t *testing.T) {
	storetest.RunBackendTests(t, func(t *testing.T) store.Backend {
		db, err := sqlitedb.Open(filepath.Join(t.TempDir(), sqlitedb.FileName))
		require.NoError(t, err)
		return db
	})
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), sqlitedb.FileName)

	db, err := sqlitedb.Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Put("abc123", []byte("time"), []byte("2024-01-02 03:04:05")))
	require.NoError(t, db.Close())

	db, err = sqlitedb.Open(path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	value, err := db.Get("abc123", []byte("time"))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02 03:04:05", string(value))
}

func TestGarbageFileIsUnavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), sqlitedb.FileName)
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("this is not a sqlite database "), 200), 0644))

	_, err := sqlitedb.Open(path)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrStorageUnavailable))
}

func TestRegisteredByName(t *testing.T) {
	assert.Contains(t, store.Backends(), sqlitedb.Name)
}
