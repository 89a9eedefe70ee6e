package linker_test

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/linkvault/pkg/config"
	"github.com/arthur-debert/linkvault/pkg/errors"
	"github.com/arthur-debert/linkvault/pkg/filesystem"
	"github.com/arthur-debert/linkvault/pkg/linker"
	"github.com/arthur-debert/linkvault/pkg/records"
	"github.com/arthur-debert/linkvault/pkg/store"
	"github.com/arthur-debert/linkvault/pkg/store/badgerdb"
	"github.com/arthur-debert/linkvault/pkg/types"
)

// recordingPersister keeps persisted batches in memory
type recordingPersister struct {
	mu      sync.Mutex
	batches []types.BatchRecord
	err     error
}

func (p *recordingPersister) Persist(record *types.BatchRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	record.FilesID = "filesfilesfiles0"
	p.batches = append(p.batches, *record)
	return nil
}

func clock() time.Time {
	return time.Date(2024, 5, 1, 8, 30, 0, 0, time.Local)
}

func newEngine(fsys types.FS, p linker.Persister, includeSymlinks bool) *linker.Engine {
	return linker.New(fsys, p, linker.Options{
		IncludeSymlinks: includeSymlinks,
		Workers:         4,
		BatchIDLength:   6,
		EntryDigits:     8,
		Now:             clock,
	})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func targets(entries []types.LinkEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Target)
	}
	sort.Strings(out)
	return out
}

func TestSingleFileLink(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "data", "a.txt")
	out := filepath.Join(dir, "out")
	writeFile(t, source, "alpha")

	p := &recordingPersister{}
	outcome, err := newEngine(filesystem.NewOS(), p, false).Link(linker.Request{
		Sources: []string{source},
		Target:  out,
		Mode:    linker.ModeSingleFile,
		Name:    "scenario-a",
	})
	require.NoError(t, err)
	require.Empty(t, outcome.Failures)

	batch := outcome.Batch
	require.Len(t, batch.Files, 1)
	entry := batch.Files[0]
	assert.Equal(t, "File", entry.Kind)
	assert.Equal(t, source, entry.Source)
	assert.Equal(t, filepath.Join(out, "a.txt"), entry.Target)
	assert.Len(t, fmt.Sprint(entry.ID), 8)

	assert.Equal(t, "single file", batch.LinkType)
	assert.Equal(t, filepath.Join(dir, "data"), batch.Source)
	assert.Equal(t, out, batch.Target)
	assert.Equal(t, "scenario-a", batch.Name)
	assert.Equal(t, "2024-05-01 08:30:00", batch.Time)
	assert.Len(t, batch.ID, 6)

	dest, err := os.Readlink(entry.Target)
	require.NoError(t, err)
	assert.Equal(t, source, dest)

	require.Len(t, p.batches, 1)
	assert.Equal(t, batch.ID, p.batches[0].ID)
	assert.Equal(t, "filesfilesfiles0", outcome.Batch.FilesID)
}

func TestSingleOverrideName(t *testing.T) {
	tests := []struct {
		override string
		want     string
	}{
		{"", "a.txt"},
		{"renamed.txt", "renamed.txt"},
		{"  padded  ", "padded"},
		{"   ", "a.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			fsys := filesystem.NewMemory()
			require.NoError(t, fsys.WriteFile("/data/a.txt", []byte("x"), 0644))

			outcome, err := newEngine(fsys, &recordingPersister{}, false).Link(linker.Request{
				Sources:  []string{"/data/a.txt", "/data/ignored.txt"},
				Target:   "/out",
				Mode:     linker.ModeSingleFile,
				Override: tt.override,
			})
			require.NoError(t, err)
			require.Len(t, outcome.Batch.Files, 1, "single modes use the first source only")
			assert.Equal(t, "/out/"+tt.want, outcome.Batch.Files[0].Target)
		})
	}
}

func TestTopLevelLinksImmediateChildren(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	out := filepath.Join(dir, "out")
	writeFile(t, filepath.Join(src, "x.txt"), "x")
	writeFile(t, filepath.Join(src, "y", "deep.txt"), "deep")

	outcome, err := newEngine(filesystem.NewOS(), &recordingPersister{}, false).Link(linker.Request{
		Sources: []string{src},
		Target:  out,
		Mode:    linker.ModeTopLevel,
	})
	require.NoError(t, err)
	require.Empty(t, outcome.Failures)
	require.Len(t, outcome.Batch.Files, 2)

	kinds := map[string]string{}
	for _, e := range outcome.Batch.Files {
		kinds[e.Target] = e.Kind
	}
	assert.Equal(t, map[string]string{
		filepath.Join(out, "x.txt"): "File",
		filepath.Join(out, "y"):     "Dir",
	}, kinds)

	// the directory is linked as a whole, its contents untouched
	info, err := os.Lstat(filepath.Join(out, "y"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)
	content, err := os.ReadFile(filepath.Join(out, "y", "deep.txt"))
	require.NoError(t, err)
	assert.Equal(t, "deep", string(content))
	assert.Equal(t, "top level", outcome.Batch.LinkType)
}

func TestMultipleSourcesSuccessesPlusFailuresEqualInputs(t *testing.T) {
	fsys := filesystem.NewMemory()
	var sources []string
	for i := 0; i < 20; i++ {
		path := fmt.Sprintf("/src/file%02d", i)
		require.NoError(t, fsys.WriteFile(path, []byte("x"), 0644))
		sources = append(sources, path)
	}
	// occupy some targets so those links fail
	require.NoError(t, fsys.MkdirAll("/out", 0755))
	for _, i := range []int{3, 7, 11} {
		require.NoError(t, fsys.WriteFile(fmt.Sprintf("/out/file%02d", i), []byte("taken"), 0644))
	}

	for _, mode := range []linker.Mode{linker.ModeMultipleFiles, linker.ModeMultipleHard} {
		t.Run(mode.Slug(), func(t *testing.T) {
			target := "/out"
			if mode == linker.ModeMultipleHard {
				target = "/out-hard"
				require.NoError(t, fsys.MkdirAll(target, 0755))
				require.NoError(t, fsys.WriteFile("/out-hard/file00", []byte("taken"), 0644))
			}
			outcome, err := newEngine(fsys, &recordingPersister{}, false).Link(linker.Request{
				Sources: sources,
				Target:  target,
				Mode:    mode,
			})
			require.NoError(t, err)
			assert.Equal(t, len(sources), len(outcome.Batch.Files)+len(outcome.Failures))
			assert.NotEmpty(t, outcome.Failures)
			for _, f := range outcome.Failures {
				assert.NotEmpty(t, f.Error)
				assert.Contains(t, f.Error, string(errors.ErrLinkCreate))
			}
			wantKind := types.KindFile.String()
			if mode == linker.ModeMultipleHard {
				wantKind = types.KindHard.String()
			}
			for _, e := range outcome.Batch.Files {
				assert.Equal(t, wantKind, e.Kind)
			}
		})
	}
}

func TestAllFilesPreservesStructure(t *testing.T) {
	for _, mode := range []linker.Mode{linker.ModeAllFiles, linker.ModeAllFilesHard} {
		t.Run(mode.Slug(), func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, "src")
			out := filepath.Join(dir, "out")
			files := []string{"top.txt", "a/one.txt", "a/b/two.txt", "c/three.txt"}
			for _, f := range files {
				writeFile(t, filepath.Join(src, f), f)
			}
			require.NoError(t, os.MkdirAll(filepath.Join(src, "empty"), 0755))

			outcome, err := newEngine(filesystem.NewOS(), &recordingPersister{}, false).Link(linker.Request{
				Sources: []string{src},
				Target:  out,
				Mode:    mode,
			})
			require.NoError(t, err)
			require.Empty(t, outcome.Failures)

			var want []string
			for _, f := range files {
				want = append(want, filepath.Join(out, filepath.FromSlash(f)))
			}
			sort.Strings(want)
			assert.Equal(t, want, targets(outcome.Batch.Files))

			for _, f := range files {
				content, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(f)))
				require.NoError(t, err)
				assert.Equal(t, f, string(content))
			}
			info, err := os.Stat(filepath.Join(out, "empty"))
			require.NoError(t, err)
			assert.True(t, info.IsDir(), "empty directories are recreated")

			info, err = os.Lstat(filepath.Join(out, "a"))
			require.NoError(t, err)
			assert.True(t, info.IsDir(), "directories are real, not links")
			assert.Zero(t, info.Mode()&os.ModeSymlink)

			wantKind := "File"
			if mode == linker.ModeAllFilesHard {
				wantKind = "Hard"
			}
			for _, e := range outcome.Batch.Files {
				assert.Equal(t, wantKind, e.Kind)
			}
		})
	}
}

func TestSymlinksOnlyWithIncludeSymlinks(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	elsewhere := filepath.Join(dir, "elsewhere")
	writeFile(t, filepath.Join(src, "real.txt"), "r")
	writeFile(t, filepath.Join(elsewhere, "f.txt"), "f")
	writeFile(t, filepath.Join(elsewhere, "sub", "inner.txt"), "i")
	require.NoError(t, os.Symlink(filepath.Join(elsewhere, "f.txt"), filepath.Join(src, "link-file")))
	require.NoError(t, os.Symlink(filepath.Join(elsewhere, "sub"), filepath.Join(src, "link-dir")))
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing"), filepath.Join(src, "dangling")))

	t.Run("all files without symlinks", func(t *testing.T) {
		out := filepath.Join(dir, "out1")
		outcome, err := newEngine(filesystem.NewOS(), &recordingPersister{}, false).Link(linker.Request{
			Sources: []string{src}, Target: out, Mode: linker.ModeAllFiles,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(out, "real.txt")}, targets(outcome.Batch.Files))
		_, err = os.Lstat(filepath.Join(out, "link-dir"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("all files with symlinks", func(t *testing.T) {
		out := filepath.Join(dir, "out2")
		outcome, err := newEngine(filesystem.NewOS(), &recordingPersister{}, true).Link(linker.Request{
			Sources: []string{src}, Target: out, Mode: linker.ModeAllFiles,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(out, "link-file"),
			filepath.Join(out, "real.txt"),
		}, targets(outcome.Batch.Files))

		info, err := os.Lstat(filepath.Join(out, "link-dir"))
		require.NoError(t, err)
		assert.True(t, info.IsDir(), "symlinked directory is recreated")
		_, err = os.Lstat(filepath.Join(out, "link-dir", "inner.txt"))
		assert.True(t, os.IsNotExist(err), "symlinked directory is not descended")
	})

	t.Run("top level with symlinks", func(t *testing.T) {
		out := filepath.Join(dir, "out3")
		outcome, err := newEngine(filesystem.NewOS(), &recordingPersister{}, true).Link(linker.Request{
			Sources: []string{src}, Target: out, Mode: linker.ModeTopLevel,
		})
		require.NoError(t, err)
		kinds := map[string]string{}
		for _, e := range outcome.Batch.Files {
			kinds[filepath.Base(e.Target)] = e.Kind
		}
		assert.Equal(t, map[string]string{"real.txt": "File", "link-file": "File", "link-dir": "Dir"}, kinds)
	})
}

func TestStructuralErrors(t *testing.T) {
	fsys := filesystem.NewMemory()
	require.NoError(t, fsys.WriteFile("/data/file.txt", []byte("x"), 0644))
	require.NoError(t, fsys.MkdirAll("/data/dir", 0755))

	tests := []struct {
		name string
		req  linker.Request
		code errors.ErrorCode
	}{
		{"no sources", linker.Request{Target: "/out"}, errors.ErrNoSourceSelected},
		{"root source", linker.Request{Sources: []string{"/"}, Target: "/out"}, errors.ErrInvalidPath},
		{"empty source", linker.Request{Sources: []string{""}, Target: "/out"}, errors.ErrInvalidPath},
		{"one bad among many", linker.Request{Sources: []string{"/data/file.txt", "/"}, Target: "/out", Mode: linker.ModeMultipleFiles}, errors.ErrInvalidPath},
		{"target is a file", linker.Request{Sources: []string{"/data/file.txt"}, Target: "/data/file.txt"}, errors.ErrInvalidPath},
		{"empty target", linker.Request{Sources: []string{"/data/file.txt"}, Target: "  "}, errors.ErrInvalidPath},
		{"file for single dir", linker.Request{Sources: []string{"/data/file.txt"}, Target: "/out", Mode: linker.ModeSingleDir}, errors.ErrInvalidPath},
		{"file for multiple dirs", linker.Request{Sources: []string{"/data/dir", "/data/file.txt"}, Target: "/out", Mode: linker.ModeMultipleDirs}, errors.ErrInvalidPath},
		{"file for all files", linker.Request{Sources: []string{"/data/file.txt"}, Target: "/out", Mode: linker.ModeAllFiles}, errors.ErrInvalidPath},
		{"missing for top level", linker.Request{Sources: []string{"/data/nope"}, Target: "/out", Mode: linker.ModeTopLevel}, errors.ErrInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &recordingPersister{}
			outcome, err := newEngine(fsys, p, false).Link(tt.req)
			require.Error(t, err)
			assert.Nil(t, outcome)
			assert.True(t, errors.IsErrorCode(err, tt.code), "got %v", err)
			assert.Empty(t, p.batches, "nothing is persisted on structural errors")
		})
	}

	_, err := fsys.Stat("/out")
	assert.True(t, os.IsNotExist(err), "target root is not created when validation fails")
}

func TestTargetRootIsCreated(t *testing.T) {
	fsys := filesystem.NewMemory()
	require.NoError(t, fsys.WriteFile("/data/a", []byte("x"), 0644))

	outcome, err := newEngine(fsys, &recordingPersister{}, false).Link(linker.Request{
		Sources: []string{"/data/a"},
		Target:  "/deep/new/target",
	})
	require.NoError(t, err)
	require.Len(t, outcome.Batch.Files, 1)
	info, err := fsys.Stat("/deep/new/target")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestReadOnlyFilesystemFailsEveryLink(t *testing.T) {
	base := afero.NewMemMapFs()
	for _, f := range []string{"/src/a", "/src/b", "/src/c"} {
		require.NoError(t, afero.WriteFile(base, f, []byte("x"), 0644))
	}
	require.NoError(t, base.MkdirAll("/out", 0755))
	fsys := filesystem.NewAferoFS(afero.NewReadOnlyFs(base))

	p := &recordingPersister{}
	outcome, err := newEngine(fsys, p, false).Link(linker.Request{
		Sources: []string{"/src/a", "/src/b", "/src/c"},
		Target:  "/out",
		Mode:    linker.ModeMultipleFiles,
	})
	require.NoError(t, err)
	assert.Empty(t, outcome.Batch.Files)
	assert.Len(t, outcome.Failures, 3)
	require.Len(t, p.batches, 1, "an all-failed run is still recorded")
	assert.NotNil(t, p.batches[0].Files)
}

func TestPersistFailureStillReturnsOutcome(t *testing.T) {
	fsys := filesystem.NewMemory()
	require.NoError(t, fsys.WriteFile("/data/a", []byte("x"), 0644))

	p := &recordingPersister{err: errors.New(errors.ErrStorageUnavailable, "disk gone")}
	outcome, err := newEngine(fsys, p, false).Link(linker.Request{
		Sources: []string{"/data/a"},
		Target:  "/out",
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrStorageUnavailable))
	require.NotNil(t, outcome)
	assert.Len(t, outcome.Batch.Files, 1)
}

func TestLinkPersistsThroughRecordStore(t *testing.T) {
	dir := t.TempDir()
	db, err := store.Open(store.Options{Backend: badgerdb.Name, Path: filepath.Join(dir, "db"), Compression: "zstd"})
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	rs := records.NewFromConfig(db, config.Default())

	writeFile(t, filepath.Join(dir, "data", "a.txt"), "a")
	writeFile(t, filepath.Join(dir, "data", "b.txt"), "b")

	outcome, err := linker.New(filesystem.NewOS(), rs, linker.OptionsFromConfig(config.Default())).Link(linker.Request{
		Sources: []string{filepath.Join(dir, "data", "a.txt"), filepath.Join(dir, "data", "b.txt")},
		Target:  filepath.Join(dir, "out"),
		Mode:    linker.ModeMultipleFiles,
		Name:    "pair",
	})
	require.NoError(t, err)

	stored, err := rs.ReadBatch(outcome.Batch.ID)
	require.NoError(t, err)
	assert.Equal(t, "pair", stored.Name)
	assert.Equal(t, "multiple files", stored.LinkType)
	assert.ElementsMatch(t, outcome.Batch.Files, stored.Files)
}

func TestEveryModeLinksWithItsKind(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeFile(t, filepath.Join(src, "f1.txt"), "one")
	writeFile(t, filepath.Join(src, "f2.txt"), "two")
	writeFile(t, filepath.Join(src, "d1", "x.txt"), "x")
	writeFile(t, filepath.Join(src, "d2", "y.txt"), "y")
	at := func(names ...string) []string {
		out := make([]string, 0, len(names))
		for _, n := range names {
			out = append(out, filepath.Join(src, n))
		}
		return out
	}

	tests := []struct {
		mode    linker.Mode
		label   string
		sources []string
		kind    string
		count   int
	}{
		{linker.ModeSingleFile, "single file", at("f1.txt"), "File", 1},
		{linker.ModeMultipleFiles, "multiple files", at("f1.txt", "f2.txt"), "File", 2},
		{linker.ModeSingleDir, "single directory", at("d1"), "Dir", 1},
		{linker.ModeMultipleDirs, "multiple directories", at("d1", "d2"), "Dir", 2},
		{linker.ModeAllFiles, "all files", at("d1"), "File", 1},
		{linker.ModeTopLevel, "top level", at("d1"), "File", 1},
		{linker.ModeSingleHard, "single hard link", at("f1.txt"), "Hard", 1},
		{linker.ModeMultipleHard, "multiple hard links", at("f1.txt", "f2.txt"), "Hard", 2},
		{linker.ModeAllFilesHard, "all files (hard)", at("d1"), "Hard", 1},
	}
	for _, tt := range tests {
		t.Run(tt.mode.Slug(), func(t *testing.T) {
			out := filepath.Join(dir, "out-"+tt.mode.Slug())

			outcome, err := newEngine(filesystem.NewOS(), &recordingPersister{}, false).Link(linker.Request{
				Sources: tt.sources,
				Target:  out,
				Mode:    tt.mode,
			})
			require.NoError(t, err)
			require.Empty(t, outcome.Failures)
			assert.Equal(t, tt.label, outcome.Batch.LinkType)
			require.Len(t, outcome.Batch.Files, tt.count)

			for _, e := range outcome.Batch.Files {
				assert.Equal(t, tt.kind, e.Kind)
				info, err := os.Lstat(e.Target)
				require.NoError(t, err)

				switch tt.kind {
				case "Hard":
					assert.Zero(t, info.Mode()&os.ModeSymlink, "hard links are not symlinks")
					srcInfo, err := os.Stat(e.Source)
					require.NoError(t, err)
					assert.True(t, os.SameFile(srcInfo, info), "%s should share the source inode", e.Target)
				default:
					dest, err := os.Readlink(e.Target)
					require.NoError(t, err)
					assert.Equal(t, e.Source, dest)
					resolved, err := os.Stat(e.Target)
					require.NoError(t, err)
					assert.Equal(t, tt.kind == "Dir", resolved.IsDir())
				}
			}
		})
	}
}

func TestRelativePathsAreResolved(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "a.txt"), "alpha")

	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
	cwd, err := os.Getwd()
	require.NoError(t, err)

	outcome, err := newEngine(filesystem.NewOS(), &recordingPersister{}, false).Link(linker.Request{
		Sources: []string{"src/a.txt"},
		Target:  "out",
		Mode:    linker.ModeSingleFile,
	})
	require.NoError(t, err)
	require.Empty(t, outcome.Failures)
	require.Len(t, outcome.Batch.Files, 1)

	entry := outcome.Batch.Files[0]
	assert.Equal(t, filepath.Join(cwd, "src", "a.txt"), entry.Source)
	assert.Equal(t, filepath.Join(cwd, "out", "a.txt"), entry.Target)
	assert.Equal(t, filepath.Join(cwd, "src"), outcome.Batch.Source)
	assert.Equal(t, filepath.Join(cwd, "out"), outcome.Batch.Target)

	content, err := os.ReadFile(entry.Target)
	require.NoError(t, err, "the link must resolve from its own directory")
	assert.Equal(t, "alpha", string(content))
}

func TestTargetInsideSourceIsNotWalked(t *testing.T) {
	tests := []struct {
		mode linker.Mode
		want []string
	}{
		{linker.ModeAllFiles, []string{"a.txt", "sub/b.txt"}},
		{linker.ModeAllFilesHard, []string{"a.txt", "sub/b.txt"}},
		{linker.ModeTopLevel, []string{"a.txt", "sub"}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.Slug(), func(t *testing.T) {
			src := filepath.Join(t.TempDir(), "src")
			writeFile(t, filepath.Join(src, "a.txt"), "a")
			writeFile(t, filepath.Join(src, "sub", "b.txt"), "b")
			mirror := filepath.Join(src, "mirror")

			outcome, err := newEngine(filesystem.NewOS(), &recordingPersister{}, false).Link(linker.Request{
				Sources: []string{src},
				Target:  mirror,
				Mode:    tt.mode,
			})
			require.NoError(t, err)
			require.Empty(t, outcome.Failures)

			var want []string
			for _, w := range tt.want {
				want = append(want, filepath.Join(mirror, filepath.FromSlash(w)))
			}
			sort.Strings(want)
			assert.Equal(t, want, targets(outcome.Batch.Files))

			_, err = os.Lstat(filepath.Join(mirror, "mirror"))
			assert.True(t, os.IsNotExist(err), "the target root is never mirrored into itself")
		})
	}
}
