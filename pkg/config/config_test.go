package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/linkvault/pkg/errors"
	"github.com/arthur-debert/linkvault/pkg/paths"
)

func setupPaths(t *testing.T) paths.Paths {
	t.Helper()
	tempDir := t.TempDir()
	t.Setenv(paths.EnvDataDir, filepath.Join(tempDir, "data"))
	t.Setenv(paths.EnvConfigDir, filepath.Join(tempDir, "config"))
	t.Setenv(paths.EnvConfigFile, "")

	p, err := paths.New()
	require.NoError(t, err)
	return p
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.False(t, cfg.Link.IncludeSymlinks)
	assert.Equal(t, 0, cfg.Link.Workers)
	assert.Equal(t, BackendBadger, cfg.Store.Backend)
	assert.Equal(t, CompressionZstd, cfg.Store.Compression)
	assert.Equal(t, 6, cfg.IDs.BatchLength)
	assert.Equal(t, 16, cfg.IDs.FilesLength)
	assert.Equal(t, 8, cfg.IDs.EntryDigits)
	assert.Equal(t, runtime.NumCPU(), cfg.WorkerCount())
}

func TestLoad_DefaultsAndDatabasePath(t *testing.T) {
	p := setupPaths(t)

	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, p.DatabasePath(), cfg.Store.Path)
	assert.Equal(t, BackendBadger, cfg.Store.Backend)
}

func TestLoad_UserFileOverridesDefaults(t *testing.T) {
	p := setupPaths(t)

	require.NoError(t, os.MkdirAll(p.ConfigDir(), 0755))
	require.NoError(t, os.WriteFile(p.ConfigFilePath(), []byte(`
[link]
include_symlinks = true
workers = 3

[store]
backend = "sqlite"
compression = "snappy"
path = "/var/lib/linkvault"
`), 0644))

	cfg, err := Load(p)
	require.NoError(t, err)

	assert.True(t, cfg.Link.IncludeSymlinks)
	assert.Equal(t, 3, cfg.WorkerCount())
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, CompressionSnappy, cfg.Store.Compression)
	assert.Equal(t, "/var/lib/linkvault", cfg.Store.Path)
	assert.Equal(t, 6, cfg.IDs.BatchLength, "untouched keys keep their defaults")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	p := setupPaths(t)

	require.NoError(t, os.MkdirAll(p.ConfigDir(), 0755))
	require.NoError(t, os.WriteFile(p.ConfigFilePath(), []byte("[link]\nworkers = 3\n"), 0644))
	t.Setenv("LINKVAULT_LINK_WORKERS", "7")
	t.Setenv("LINKVAULT_LINK_INCLUDE_SYMLINKS", "true")
	t.Setenv("LINKVAULT_STORE_COMPRESSION", "none")

	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Link.Workers)
	assert.True(t, cfg.Link.IncludeSymlinks)
	assert.Equal(t, CompressionNone, cfg.Store.Compression)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown backend", "[store]\nbackend = \"etcd\"\n"},
		{"unknown compression", "[store]\ncompression = \"lz4\"\n"},
		{"equal id lengths", "[ids]\nbatch_length = 16\n"},
		{"too many digits", "[ids]\nentry_digits = 20\n"},
		{"negative workers", "[link]\nworkers = -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := setupPaths(t)
			require.NoError(t, os.MkdirAll(p.ConfigDir(), 0755))
			require.NoError(t, os.WriteFile(p.ConfigFilePath(), []byte(tt.body), 0644))

			_, err := Load(p)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
		})
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	p := setupPaths(t)
	require.NoError(t, os.MkdirAll(p.ConfigDir(), 0755))
	require.NoError(t, os.WriteFile(p.ConfigFilePath(), []byte("[link\nworkers = "), 0644))

	_, err := Load(p)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "link.include_symlinks", envKey("LINKVAULT_LINK_INCLUDE_SYMLINKS"))
	assert.Equal(t, "store.backend", envKey("LINKVAULT_STORE_BACKEND"))
	assert.Equal(t, "config", envKey("LINKVAULT_CONFIG"))
}

func TestMarshal(t *testing.T) {
	cfg := Default()

	out, err := cfg.Marshal(FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(out), "backend: badger")

	out, err = cfg.Marshal(FormatTOML)
	require.NoError(t, err)
	assert.Contains(t, string(out), "[store]")
	assert.Regexp(t, `backend = ['"]badger['"]`, string(out))

	_, err = cfg.Marshal("ini")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}
