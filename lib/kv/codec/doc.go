// Package codec implements the on-disk record format of the engine.
//
// A record stores one key, its value and an optional absolute expiry
// timestamp. The encoding is self-framing: a fixed prelude carries the
// lengths of the variable parts, so consecutive records can be concatenated
// with no separators and still be parsed back individually. A CRC32
// checksum protects every record against torn writes and bit rot.
//
// The decoder distinguishes two terminal conditions:
//   - io.EOF: the stream ended exactly at a record boundary (normal)
//   - ErrCorruptRecord: malformed bytes mid-stream (hard error, the scan
//     must be aborted and the error surfaced to the caller)
package codec
