// TEST TYPE: Business Logic Integration
// DEPENDENCIES: badger store in a temp dir, real and read-only filesystems
// PURPOSE: Verify per-batch isolation of removal failures

package remove_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/arthur-debert/linkvault/pkg/commands"
	"github.com/arthur-debert/linkvault/pkg/commands/remove"
	"github.com/arthur-debert/linkvault/pkg/errors"
	"github.com/arthur-debert/linkvault/pkg/filesystem"
	"github.com/arthur-debert/linkvault/pkg/linker"
	"github.com/arthur-debert/linkvault/pkg/testutil"
	"github.com/arthur-debert/linkvault/pkg/types"
)

func makeBatch(t *testing.T, env *testutil.TestEnvironment, name string) types.BatchRecord {
	t.Helper()
	src := testutil.CreateTree(t, env.FS, env.Path("src", name), testutil.Tree{"f1": "1", "f2": "2", "f3": "3"})
	result, err := env.App.Link(commands.LinkRequest{
		Sources: []string{filepath.Join(src, "f1"), filepath.Join(src, "f2"), filepath.Join(src, "f3")},
		Target:  env.Path("out", name),
		Mode:    linker.ModeMultipleFiles,
		Name:    name,
	})
	require.NoError(t, err)
	return result.Batch
}

func TestRemoveLooksUpMissingFilesID(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	batch := makeBatch(t, env, "lookup")

	result, err := remove.RemoveBatches(remove.RemoveBatchesOptions{
		FS:      env.FS,
		Records: env.Records,
		Workers: 2,
		Batches: []types.BatchRecord{{ID: batch.ID}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{batch.ID}, result.Removed)
	for _, e := range batch.Files {
		testutil.AssertNotExists(t, e.Target)
	}
}

func TestRemovePrefersStoredFilesID(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	batch := makeBatch(t, env, "stale")
	realFilesID := batch.FilesID

	stale := batch.Metadata()
	stale.FilesID = "notTheRightOne00"
	result, err := remove.RemoveBatches(remove.RemoveBatchesOptions{
		FS:      env.FS,
		Records: env.Records,
		Workers: 2,
		Batches: []types.BatchRecord{stale},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{batch.ID}, result.Removed)

	for _, e := range batch.Files {
		testutil.AssertNotExists(t, e.Target)
	}
	ok, err := env.Records.HasNamespace(realFilesID)
	require.NoError(t, err)
	assert.False(t, ok, "the real entries namespace is dropped, not orphaned")
}

func TestRemoveToleratesAlreadyMissingTargets(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	batch := makeBatch(t, env, "partial")
	require.NoError(t, os.Remove(batch.Files[0].Target))

	result, err := env.App.RemoveBatches([]types.BatchRecord{batch})
	require.NoError(t, err)
	assert.Equal(t, []string{batch.ID}, result.Removed)
}

func TestRemoveIsolatesFailingBatches(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	good := makeBatch(t, env, "good")
	bad := makeBatch(t, env, "bad")

	result, err := remove.RemoveBatches(remove.RemoveBatchesOptions{
		FS:      env.FS,
		Records: env.Records,
		Workers: 4,
		Batches: []types.BatchRecord{
			good,
			{ID: "nope00"},
			{},
		},
	})
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Equal(t, []string{good.ID}, result.Removed)
	assert.ElementsMatch(t, []string{"nope00", ""}, result.Kept)

	remaining, err := env.App.ReadBatches()
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, bad.ID, remaining[0].ID)
}

func TestFailedReversalKeepsRecord(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryFS)
	testutil.CreateTree(t, env.FS, "/src", testutil.Tree{"a": "a", "b": "b"})
	result, err := env.App.Link(commands.LinkRequest{
		Sources: []string{"/src/a", "/src/b"},
		Target:  "/out",
		Mode:    linker.ModeMultipleFiles,
	})
	require.NoError(t, err)
	require.Len(t, result.Batch.Files, 2)

	// the same store, but a filesystem that refuses every removal
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/out/a", []byte("/src/a"), 0644))
	require.NoError(t, afero.WriteFile(mem, "/out/b", []byte("/src/b"), 0644))
	readOnly := filesystem.NewAferoFS(afero.NewReadOnlyFs(mem))

	removed, err := remove.RemoveBatches(remove.RemoveBatchesOptions{
		FS:      readOnly,
		Records: env.Records,
		Workers: 2,
		Batches: []types.BatchRecord{result.Batch},
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrLinkReverse))
	assert.Equal(t, []string{result.Batch.ID}, removed.Kept)

	stored, err := env.Records.ReadBatch(result.Batch.ID)
	require.NoError(t, err, "a batch with failed reversals stays recorded")
	assert.Len(t, stored.Files, 2)
}

func TestRemoveNothing(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryFS)
	result, err := env.App.RemoveBatches(nil)
	require.NoError(t, err)
	assert.Empty(t, result.Removed)
	assert.Empty(t, result.Kept)
}
