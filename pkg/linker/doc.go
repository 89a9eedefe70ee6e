// Package linker creates filesystem links in one of nine modes and records
// each run as a batch.
//
// A mode is a Strategy. The strategy validates the request, walks its sources
// and emits the links to create; the Engine then creates them, synchronously
// for the single-source modes and through a bounded worker pool otherwise.
// Every link either succeeds, becoming a LinkEntry of the batch, or fails and
// is reported back in Outcome.Failures. Failed links are never retried.
//
// Only structural problems abort a run before any link exists: no sources,
// a source without a base name, a non-directory given to a directory mode,
// or no target root.
package linker
