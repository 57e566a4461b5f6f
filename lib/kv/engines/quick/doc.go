// Package quick implements the canonical kv.Engine: an embedded,
// single-process storage engine that serves reads from an in-memory cache
// and persists every mutation to a local append-only record log.
//
// # Architecture
//
// The engine composes four parts:
//
//   - State: a map from key to entry plus an ordered expiration index
//     ((expiresAt, key) pairs in a B-tree), guarded together by one mutex.
//     After startup hydration the cache is complete, so reads never touch
//     the disk (cache-is-truth).
//
//   - Journal (lib/kv/journal): the durable record log. Set appends one
//     record and fsyncs; Update and Delete capture the full log, drop or
//     replace the touched key's records and rewrite the file from scratch.
//     The rewrite is O(total records) per mutation, a deliberate
//     simplicity trade-off of the log format (no tombstones, no free-space
//     reclamation).
//
//   - Expiration manager: an explicit TTL on a write overrides the
//     configured engine default; with neither the entry never expires.
//     Expired entries are evicted both lazily (on the access that finds
//     them expired) and actively (a background sweeper walks the ordered
//     index from its earliest member - a prefix scan - on a timer).
//
//   - The facade: get/set/update/delete, existence and enumeration
//     queries, batch forms, Info and Close.
//
// # Durability
//
// Every mutating path writes the journal first and applies the in-memory
// change only after the disk write (including fsync) succeeded. A failed
// write leaves the cache untouched and surfaces a kv.Error with
// RetCIOError (or RetCCorruptData if the pre-rewrite scan found malformed
// bytes).
//
// # Runtimes
//
// RuntimeDisk (default) persists to a ".qkv" file; construction replays
// the log into the cache before the engine accepts calls. RuntimeMemory
// performs no file I/O at all and starts empty.
//
// # Concurrency
//
// All methods are synchronous and safe for concurrent use. One mutex over
// (entries, expiration index) is the serialization point for every
// mutating operation and is intentionally held across journal I/O: two
// concurrent writes to the same key are linearized, last writer under the
// lock wins. The background sweeper takes the same mutex per pass and is
// shut down explicitly (and awaited) by Close.
//
// Example usage:
//
//	db, err := quick.New(quick.Config{Path: "data/app.qkv"})
//	if err != nil {
//		...
//	}
//	defer db.Close()
//
//	_ = db.Set("greeting", []byte("hello"), 0)
//	_ = db.Set("session:1", []byte("token"), 30*time.Second)
//
//	value, found, _ := db.Get("greeting")
package quick
