// Package records reads and writes linkvault's batch records on top of a
// store.Backend.
//
// A batch occupies two namespaces. The metadata namespace, named by the batch
// id, holds the fields name, source, target, type, time and file_id. The
// entries namespace, named by the file_id value, holds one JSON link entry per key,
// keyed by the entry's decimal id. Batch ids are also recorded in the
// reserved __batches index, which is what ListBatchNamespaces reads.
package records
