// Package journal implements the persistence layer of the engine: an
// append-only record log on a single local file.
//
// The log is the durability source of truth; the engine's in-memory state is
// a cache rebuilt from it at startup. Three operations keep the two
// consistent:
//
//   - Append: write one record at the end of the file, fsync before return.
//     Used by Set.
//   - Rewrite: truncate and write a full record set from the start, fsync.
//     The sole mechanism for removing or replacing records, used by Update,
//     Delete and Purge.
//   - Scan / Snapshot: decode the file front to back, used for startup
//     recovery and to capture the current contents before a rewrite.
//
// Failure semantics: every I/O error aborts the current operation and is
// propagated to the caller, never retried. A record that fails to decode
// mid-file aborts the scan with codec.ErrCorruptRecord.
package journal
