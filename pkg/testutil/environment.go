package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/linkvault/pkg/commands"
	"github.com/arthur-debert/linkvault/pkg/config"
	"github.com/arthur-debert/linkvault/pkg/filesystem"
	"github.com/arthur-debert/linkvault/pkg/records"
	"github.com/arthur-debert/linkvault/pkg/store"
	"github.com/arthur-debert/linkvault/pkg/types"

	// backends selectable through EnvOptions.Backend
	_ "github.com/arthur-debert/linkvault/pkg/store/badgerdb"
	_ "github.com/arthur-debert/linkvault/pkg/store/sqlitedb"
)

// EnvType defines where links are created
type EnvType int

const (
	// EnvIsolated links on the real filesystem inside a temp directory
	EnvIsolated EnvType = iota
	// EnvMemoryFS links on an in-memory filesystem; the store stays on disk
	EnvMemoryFS
)

// TestEnvironment is a sandbox with every linkvault dependency
type TestEnvironment struct {
	Root    string
	Config  *config.Config
	FS      types.FS
	Backend store.Backend
	Records *records.Store
	App     *commands.App

	t *testing.T
}

// EnvOptions tweaks NewTestEnvironment
type EnvOptions struct {
	// Backend is "badger" unless set
	Backend string
	// Compression is "zstd" unless set
	Compression     string
	IncludeSymlinks bool
}

// NewTestEnvironment creates an isolated environment. The store is closed
// when the test ends.
func NewTestEnvironment(t *testing.T, envType EnvType, opts ...EnvOptions) *TestEnvironment {
	t.Helper()

	var o EnvOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.Backend == "" {
		o.Backend = config.BackendBadger
	}
	if o.Compression == "" {
		o.Compression = config.CompressionZstd
	}

	root := t.TempDir()
	t.Setenv("HOME", filepath.Join(root, "home"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))

	cfg := config.Default()
	cfg.Store.Backend = o.Backend
	cfg.Store.Compression = o.Compression
	cfg.Store.Path = filepath.Join(root, "data", "linkvault", "db")
	cfg.Link.IncludeSymlinks = o.IncludeSymlinks
	cfg.Link.Workers = 4

	backend, err := store.Open(store.OptionsFromConfig(cfg))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = backend.Close() })

	var fsys types.FS
	switch envType {
	case EnvMemoryFS:
		fsys = filesystem.NewMemory()
	default:
		fsys = filesystem.NewOS()
	}

	rs := records.NewFromConfig(backend, cfg)
	return &TestEnvironment{
		Root:    root,
		Config:  cfg,
		FS:      fsys,
		Backend: backend,
		Records: rs,
		App:     commands.NewApp(fsys, rs, cfg),
		t:       t,
	}
}

// Path joins elements under the environment root
func (e *TestEnvironment) Path(elem ...string) string {
	return filepath.Join(append([]string{e.Root}, elem...)...)
}

// FixedClock returns a clock stuck at the given local time
func FixedClock(year int, month time.Month, day, hour, min, sec int) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, day, hour, min, sec, 0, time.Local)
	}
}
