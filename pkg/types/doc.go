// Package types defines the core types shared across linkvault.
//
// LinkEntry is one created link, BatchRecord is the persisted record of one
// link operation, and FS is the filesystem seam every component goes through
// so the engine and the reversal logic can run against a real disk or an
// in-memory filesystem in tests.
package types
