package remove

import (
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/linkvault/pkg/errors"
	"github.com/arthur-debert/linkvault/pkg/logging"
	"github.com/arthur-debert/linkvault/pkg/records"
	"github.com/arthur-debert/linkvault/pkg/types"
)

// RemoveBatchesOptions defines the options for the RemoveBatches command.
type RemoveBatchesOptions struct {
	FS      types.FS
	Records *records.Store
	// Workers bounds both the batches removed at once and the entries
	// reversed at once within a batch
	Workers int

	// Batches to remove. Only ID is required; FilesID is read from the
	// stored metadata and the given one is only used when that is gone.
	// Entries are always loaded from the store.
	Batches []types.BatchRecord
}

// RemoveResult reports which batches were removed and which were kept
// because something went wrong.
type RemoveResult struct {
	Removed []string `json:"removed"`
	Kept    []string `json:"kept"`
}

// RemoveBatches reverses every link of each batch and drops its namespaces.
//
// Batches are independent: a batch whose links all reversed is dropped even if
// another batch fails. A batch with any failure keeps both namespaces so the
// removal can be retried. All failures are combined into the returned error,
// which is returned alongside the result.
func RemoveBatches(opts RemoveBatchesOptions) (*RemoveResult, error) {
	log := logging.GetLogger("commands.remove")
	log.Debug().Str("command", "RemoveBatches").Int("batchCount", len(opts.Batches)).Msg("Executing command")

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	var (
		mu     sync.Mutex
		result = &RemoveResult{Removed: []string{}, Kept: []string{}}
		errs   error
	)

	var g errgroup.Group
	g.SetLimit(workers)
	for _, batch := range opts.Batches {
		g.Go(func() error {
			err := removeOne(opts, workers, batch)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn().Err(err).Str("batch", batch.ID).Msg("Batch kept")
				result.Kept = append(result.Kept, batch.ID)
				errs = multierr.Append(errs, err)
				return nil
			}
			result.Removed = append(result.Removed, batch.ID)
			return nil
		})
	}
	_ = g.Wait()

	log.Info().
		Str("command", "RemoveBatches").
		Int("removed", len(result.Removed)).
		Int("kept", len(result.Kept)).
		Msg("Command finished")
	return result, errs
}

// resolveFilesID trusts the stored metadata over the caller's copy. The
// caller's files id is only used when the metadata is gone.
func resolveFilesID(opts RemoveBatchesOptions, batch types.BatchRecord) (string, error) {
	meta, err := opts.Records.ReadBatchMetadata(batch.ID)
	switch {
	case err == nil:
		if batch.FilesID != "" && batch.FilesID != meta.FilesID {
			log := logging.GetLogger("commands.remove")
			log.Warn().
				Str("batch", batch.ID).
				Str("given", batch.FilesID).
				Str("stored", meta.FilesID).
				Msg("Ignoring stale files id")
		}
		return meta.FilesID, nil
	case batch.FilesID != "" && errors.IsErrorCode(err, errors.ErrRecordNotFound):
		return batch.FilesID, nil
	default:
		return "", err
	}
}

func removeOne(opts RemoveBatchesOptions, workers int, batch types.BatchRecord) error {
	if batch.ID == "" {
		return errors.New(errors.ErrInvalidInput, "batch record has no id")
	}

	filesID, err := resolveFilesID(opts, batch)
	if err != nil {
		return err
	}

	entries, err := opts.Records.ReadEntries(filesID)
	if err != nil {
		return err
	}

	if err := reverseAll(opts.FS, workers, entries); err != nil {
		return errors.Wrapf(err, errors.ErrLinkReverse, "batch %s: some links could not be removed", batch.ID).
			WithDetail("batch", batch.ID)
	}

	if err := opts.Records.DropNamespace(filesID); err != nil {
		return err
	}
	return opts.Records.DropNamespace(batch.ID)
}

// reverseAll reverses every entry, in parallel, and combines the failures
func reverseAll(fsys types.FS, workers int, entries []types.LinkEntry) error {
	var (
		mu   sync.Mutex
		errs error
		g    errgroup.Group
	)
	g.SetLimit(workers)
	for _, entry := range entries {
		g.Go(func() error {
			if err := entry.Reverse(fsys); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errs
}
