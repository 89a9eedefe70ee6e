// Package store is linkvault's low-level record store: a durable key/value
// store split into named trees (namespaces), each ordered by key.
//
// Backends live in subpackages and register themselves by name from init():
//
//	import _ "github.com/arthur-debert/linkvault/pkg/store/badgerdb"
//
// Open looks the configured backend up, opens it at the configured path and
// wraps it so every value is compressed with the configured codec. Shared
// hands out one process-wide handle, which CloseShared releases at shutdown.
package store
