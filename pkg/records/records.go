package records

import (
	"strconv"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/linkvault/pkg/config"
	"github.com/arthur-debert/linkvault/pkg/errors"
	"github.com/arthur-debert/linkvault/pkg/ids"
	"github.com/arthur-debert/linkvault/pkg/logging"
	"github.com/arthur-debert/linkvault/pkg/store"
	"github.com/arthur-debert/linkvault/pkg/types"
)

// BatchIndexTree lists every batch id ever written and not yet dropped
const BatchIndexTree = "__batches"

// Metadata field keys
const (
	FieldName    = "name"
	FieldSource  = "source"
	FieldTarget  = "target"
	FieldType    = "type"
	FieldTime    = "time"
	FieldFilesID = "file_id"
)

var metadataFields = []string{FieldName, FieldSource, FieldTarget, FieldType, FieldTime, FieldFilesID}

// IsReserved reports whether a namespace name belongs to the store itself
func IsReserved(name string) bool {
	return name == store.DefaultTree || name == BatchIndexTree
}

// Store reads and writes batch records
type Store struct {
	backend store.Backend
	ids     config.IDs
	workers int
	logger  zerolog.Logger
}

// New creates a record store. workers bounds concurrent entry writes.
func New(backend store.Backend, idCfg config.IDs, workers int) *Store {
	if workers < 1 {
		workers = 1
	}
	return &Store{
		backend: backend,
		ids:     idCfg,
		workers: workers,
		logger:  logging.GetLogger("records"),
	}
}

// NewFromConfig creates a record store using the configured id lengths and
// worker count
func NewFromConfig(backend store.Backend, cfg *config.Config) *Store {
	return New(backend, cfg.IDs, cfg.WorkerCount())
}

func unavailable(err error, msg string, namespace string) error {
	if errors.GetErrorCode(err) == errors.ErrStorageUnavailable || errors.IsErrorCode(err, errors.ErrInvalidInput) {
		return err
	}
	return errors.Wrap(err, errors.ErrStorageUnavailable, msg).WithDetail("namespace", namespace)
}

// WriteBatchMetadata writes the batch's metadata fields under its id and
// returns the freshly generated entries namespace id. The entries namespace
// is opened and the batch is added to the index.
func (s *Store) WriteBatchMetadata(batch types.BatchRecord) (string, error) {
	if batch.ID == "" {
		return "", errors.New(errors.ErrInvalidInput, "batch id cannot be empty")
	}

	filesID := ids.NewToken(s.ids.FilesLength)
	for filesID == batch.ID {
		filesID = ids.NewToken(s.ids.FilesLength)
	}

	if err := s.backend.OpenTree(batch.ID); err != nil {
		return "", unavailable(err, "cannot open metadata namespace", batch.ID)
	}

	values := map[string]string{
		FieldName:    batch.Name,
		FieldSource:  batch.Source,
		FieldTarget:  batch.Target,
		FieldType:    batch.LinkType,
		FieldTime:    batch.Time,
		FieldFilesID: filesID,
	}
	for _, field := range metadataFields {
		if err := s.backend.Put(batch.ID, []byte(field), []byte(values[field])); err != nil {
			return "", unavailable(err, "cannot write metadata field "+field, batch.ID)
		}
	}

	if err := s.backend.OpenTree(filesID); err != nil {
		return "", unavailable(err, "cannot open entries namespace", filesID)
	}
	if err := s.backend.Put(BatchIndexTree, []byte(batch.ID), []byte(batch.Time)); err != nil {
		return "", unavailable(err, "cannot index batch", BatchIndexTree)
	}

	s.logger.Debug().
		Str("batch", batch.ID).
		Str("files_id", filesID).
		Msg("Wrote batch metadata")
	return filesID, nil
}

// WriteEntries writes each entry as JSON keyed by its decimal id. Writes run
// concurrently; the first failure is returned once all writes finish.
func (s *Store) WriteEntries(filesID string, entries []types.LinkEntry) error {
	var g errgroup.Group
	g.SetLimit(s.workers)

	for _, entry := range entries {
		g.Go(func() error {
			data, err := jsoniter.Marshal(entry)
			if err != nil {
				return errors.Wrap(err, errors.ErrInternal, "cannot encode link entry")
			}
			key := strconv.FormatUint(entry.ID, 10)
			if err := s.backend.Put(filesID, []byte(key), data); err != nil {
				return unavailable(err, "cannot write link entry "+key, filesID)
			}
			return nil
		})
	}
	return g.Wait()
}

// Persist writes the record's metadata then its entries and stores the
// generated files id on the record. Nothing is rolled back if the entries
// fail to write.
func (s *Store) Persist(record *types.BatchRecord) error {
	done := logging.LogOperationStart(s.logger, "persist batch")
	defer done()

	filesID, err := s.WriteBatchMetadata(*record)
	if err != nil {
		return err
	}
	record.FilesID = filesID
	return s.WriteEntries(filesID, record.Files)
}

// ListBatchNamespaces returns the ids of every indexed batch whose metadata
// namespace still exists. Ids of the wrong length are skipped.
func (s *Store) ListBatchNamespaces() ([]string, error) {
	var candidates []string
	err := s.backend.Iterate(BatchIndexTree, func(key, _ []byte) error {
		candidates = append(candidates, string(key))
		return nil
	})
	if errors.IsErrorCode(err, errors.ErrRecordNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, unavailable(err, "cannot read batch index", BatchIndexTree)
	}

	names := make([]string, 0, len(candidates))
	for _, name := range candidates {
		if !s.IsBatchID(name) {
			s.logger.Debug().Str("namespace", name).Msg("Skipping non-batch index entry")
			continue
		}
		ok, err := s.backend.HasTree(name)
		if err != nil {
			return nil, unavailable(err, "cannot check namespace", name)
		}
		if !ok {
			s.logger.Debug().Str("namespace", name).Msg("Indexed batch has no namespace")
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// HasNamespace reports whether a namespace exists
func (s *Store) HasNamespace(name string) (bool, error) {
	ok, err := s.backend.HasTree(name)
	if err != nil {
		return false, unavailable(err, "cannot check namespace", name)
	}
	return ok, nil
}

// IsBatchID reports whether id has the shape of a batch id
func (s *Store) IsBatchID(id string) bool {
	return len(id) == s.ids.BatchLength && !IsReserved(id)
}

// ReadBatchMetadata loads a batch's metadata. Files is left empty.
func (s *Store) ReadBatchMetadata(id string) (types.BatchRecord, error) {
	ok, err := s.backend.HasTree(id)
	if err != nil {
		return types.BatchRecord{}, unavailable(err, "cannot check namespace", id)
	}
	if !ok || IsReserved(id) {
		return types.BatchRecord{}, errors.Newf(errors.ErrRecordNotFound, "no batch %q", id).
			WithDetail("id", id)
	}

	values := make(map[string]string, len(metadataFields))
	for _, field := range metadataFields {
		raw, err := s.backend.Get(id, []byte(field))
		if errors.IsErrorCode(err, errors.ErrRecordNotFound) {
			return types.BatchRecord{}, errors.Newf(errors.ErrRecordCorrupt, "batch %q has no %s", id, field).
				WithDetail("id", id).
				WithDetail("field", field)
		}
		if err != nil {
			if errors.IsErrorCode(err, errors.ErrRecordCorrupt) {
				return types.BatchRecord{}, err
			}
			return types.BatchRecord{}, unavailable(err, "cannot read metadata field "+field, id)
		}
		if !utf8.Valid(raw) {
			return types.BatchRecord{}, errors.Newf(errors.ErrRecordCorrupt, "batch %q field %s is not UTF-8", id, field).
				WithDetail("id", id).
				WithDetail("field", field)
		}
		values[field] = string(raw)
	}

	return types.BatchRecord{
		ID:       id,
		Name:     values[FieldName],
		Source:   values[FieldSource],
		Target:   values[FieldTarget],
		LinkType: values[FieldType],
		Time:     values[FieldTime],
		FilesID:  values[FieldFilesID],
		Files:    []types.LinkEntry{},
	}, nil
}

// ReadEntries loads every entry of an entries namespace in key order. A
// namespace that does not exist reads as empty.
func (s *Store) ReadEntries(filesID string) ([]types.LinkEntry, error) {
	entries := []types.LinkEntry{}
	err := s.backend.Iterate(filesID, func(key, value []byte) error {
		var entry types.LinkEntry
		if err := jsoniter.Unmarshal(value, &entry); err != nil {
			return errors.Wrapf(err, errors.ErrRecordCorrupt, "cannot decode link entry %s", key).
				WithDetail("files_id", filesID).
				WithDetail("key", string(key))
		}
		entries = append(entries, entry)
		return nil
	})
	if errors.IsErrorCode(err, errors.ErrRecordNotFound) {
		return []types.LinkEntry{}, nil
	}
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrRecordCorrupt) {
			return nil, err
		}
		return nil, unavailable(err, "cannot read entries", filesID)
	}
	return entries, nil
}

// ReadBatch loads a batch's metadata and its entries
func (s *Store) ReadBatch(id string) (types.BatchRecord, error) {
	record, err := s.ReadBatchMetadata(id)
	if err != nil {
		return types.BatchRecord{}, err
	}
	record.Files, err = s.ReadEntries(record.FilesID)
	if err != nil {
		return types.BatchRecord{}, err
	}
	return record, nil
}

// ListBatches returns the metadata of every listed batch. Batches whose
// metadata is corrupt are logged and left out.
func (s *Store) ListBatches() ([]types.BatchRecord, error) {
	names, err := s.ListBatchNamespaces()
	if err != nil {
		return nil, err
	}

	batches := make([]types.BatchRecord, 0, len(names))
	for _, name := range names {
		record, err := s.ReadBatchMetadata(name)
		if err != nil {
			if errors.IsErrorCode(err, errors.ErrRecordCorrupt) || errors.IsErrorCode(err, errors.ErrRecordNotFound) {
				s.logger.Warn().Err(err).Str("batch", name).Msg("Skipping unreadable batch")
				continue
			}
			return nil, err
		}
		batches = append(batches, record)
	}
	return batches, nil
}

// DropNamespace irreversibly removes a namespace and, for a batch, its index
// entry.
func (s *Store) DropNamespace(name string) error {
	if IsReserved(name) {
		return errors.Newf(errors.ErrInvalidInput, "namespace %q is reserved", name)
	}
	if err := s.backend.DropTree(name); err != nil {
		return unavailable(err, "cannot drop namespace", name)
	}
	if err := s.backend.Delete(BatchIndexTree, []byte(name)); err != nil {
		return unavailable(err, "cannot update batch index", name)
	}
	s.logger.Debug().Str("namespace", name).Msg("Dropped namespace")
	return nil
}
