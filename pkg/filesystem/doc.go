// Package filesystem provides filesystem implementations for linkvault.
//
// This package contains implementations of the types.FS interface,
// including the standard OS filesystem and an afero-backed filesystem
// used by tests (in-memory and read-only variants).
package filesystem
