package ui

import (
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/arthur-debert/linkvault/pkg/errors"
	"github.com/arthur-debert/linkvault/pkg/linker"
	"github.com/arthur-debert/linkvault/pkg/types"
)

type jsonRenderer struct {
	enc *jsoniter.Encoder
}

func newJSONRenderer(w io.Writer) *jsonRenderer {
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	enc.SetIndent("", "  ")
	return &jsonRenderer{enc: enc}
}

func (r *jsonRenderer) encode(v interface{}) error {
	if err := r.enc.Encode(v); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode output")
	}
	return nil
}

func (r *jsonRenderer) Batches(batches []types.BatchRecord) error {
	if batches == nil {
		batches = []types.BatchRecord{}
	}
	return r.encode(batches)
}

func (r *jsonRenderer) Batch(b types.BatchRecord) error { return r.encode(b) }

func (r *jsonRenderer) Entries(entries []types.LinkEntry) error {
	if entries == nil {
		entries = []types.LinkEntry{}
	}
	return r.encode(entries)
}

func (r *jsonRenderer) Linked(b types.BatchRecord, failed []linker.Failure) error {
	if failed == nil {
		failed = []linker.Failure{}
	}
	return r.encode(map[string]interface{}{"batch": b, "failed": failed})
}

func (r *jsonRenderer) Removed(removed, kept []string) error {
	if removed == nil {
		removed = []string{}
	}
	if kept == nil {
		kept = []string{}
	}
	return r.encode(map[string][]string{"removed": removed, "kept": kept})
}

func (r *jsonRenderer) Message(msg string) error {
	return r.encode(map[string]string{"message": msg})
}

func (r *jsonRenderer) Error(err error) error {
	return r.encode(map[string]string{"error": errors.Message(err)})
}
