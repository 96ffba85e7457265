// Package store is the storage engine: it opens the SQLite database, brings
// its schema up to catalog.Version and hands out the connection pools used by
// the transaction coordinator.
//
// # Overview
//
// Open pings the medium (failures are common.ErrStoreUnavailable), runs the
// embedded goose migrations and verifies the catalog. Two pools share the
// database file: a read pool for snapshot reads and a one-connection write
// pool whose transactions begin IMMEDIATE. Foreign keys, WAL and the busy
// timeout are set per connection through the DSN.
//
// Lazy shares one Store across a process. Concurrent first callers of Get
// wait on a single open; a failed open is retried by the next caller.
//
// Translate maps SQLite constraint and lock errors onto the common error
// taxonomy so callers never inspect driver errors.
//
// Typical Usage
//
//	lazy := store.NewLazy(store.Options{Path: "speaker.db", Logger: log})
//	s, err := lazy.Get(ctx)
//	if err != nil { ... }
//	defer lazy.Close()
package store
