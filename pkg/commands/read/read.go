package read

import (
	"github.com/arthur-debert/linkvault/pkg/errors"
	"github.com/arthur-debert/linkvault/pkg/logging"
	"github.com/arthur-debert/linkvault/pkg/records"
	"github.com/arthur-debert/linkvault/pkg/types"
)

// ReadBatchesOptions defines the options for the ReadBatches command.
type ReadBatchesOptions struct {
	Records *records.Store
}

// ReadBatches lists every batch, metadata only.
func ReadBatches(opts ReadBatchesOptions) ([]types.BatchRecord, error) {
	log := logging.GetLogger("commands.read")
	log.Debug().Str("command", "ReadBatches").Msg("Executing command")

	batches, err := opts.Records.ListBatches()
	if err != nil {
		return nil, err
	}
	log.Info().Str("command", "ReadBatches").Int("batchCount", len(batches)).Msg("Command finished")
	return batches, nil
}

// ReadBatchFilesOptions defines the options for the ReadBatchFiles command.
type ReadBatchFilesOptions struct {
	Records *records.Store
	// ID is a batch id or the id of a batch's entries namespace
	ID string
	// All returns the whole record instead of only its entries
	All bool
}

// ReadBatchFiles loads a batch's entries. With All it returns the
// types.BatchRecord including its entries, otherwise the []types.LinkEntry.
//
// ID may name the batch itself or its entries namespace. In the latter case
// the record returned with All only carries FilesID and Files.
func ReadBatchFiles(opts ReadBatchFilesOptions) (interface{}, error) {
	log := logging.GetLogger("commands.read")
	log.Debug().Str("command", "ReadBatchFiles").Str("id", opts.ID).Bool("all", opts.All).Msg("Executing command")

	if opts.ID == "" {
		return nil, errors.New(errors.ErrInvalidInput, "batch id cannot be empty")
	}

	record, err := resolve(opts.Records, opts.ID)
	if err != nil {
		return nil, err
	}

	log.Info().Str("command", "ReadBatchFiles").Int("fileCount", len(record.Files)).Msg("Command finished")
	if opts.All {
		return record, nil
	}
	return record.Files, nil
}

func resolve(rs *records.Store, id string) (types.BatchRecord, error) {
	if rs.IsBatchID(id) {
		record, err := rs.ReadBatch(id)
		if err == nil {
			return record, nil
		}
		if !errors.IsErrorCode(err, errors.ErrRecordNotFound) {
			return types.BatchRecord{}, err
		}
	}

	ok, err := rs.HasNamespace(id)
	if err != nil {
		return types.BatchRecord{}, err
	}
	if !ok {
		return types.BatchRecord{}, errors.Newf(errors.ErrRecordNotFound, "no batch or entries namespace %q", id).
			WithDetail("id", id)
	}
	entries, err := rs.ReadEntries(id)
	if err != nil {
		return types.BatchRecord{}, err
	}
	return types.BatchRecord{FilesID: id, Files: entries}, nil
}
