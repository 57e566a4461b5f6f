package kv

import (
	"fmt"
	"time"
)

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

// Runtime selects how an engine persists its data.
type Runtime string

const (
	// RuntimeDisk backs the in-memory cache with a durable record log.
	RuntimeDisk Runtime = "disk"
	// RuntimeMemory keeps all entries in memory only, no file I/O is performed.
	RuntimeMemory Runtime = "memory"
)

// Item is a single key-value pair handed to the batch write operations.
// A zero TTL means "use the engine default" (or never, if no default is set).
type Item struct {
	Key   string
	Value []byte
	TTL   time.Duration
}

// EngineInfo returns metadata and counters about a running engine.
// It is not guaranteed that all fields are filled in or that the information is up-to-date!
type EngineInfo struct {
	Runtime Runtime `json:"runtime"`
	Path    string  `json:"path"` // empty for memory runtime

	Entries int64 `json:"entries"` // live entries currently cached
	Hits    int64 `json:"hits"`    // gets that found a live entry
	Misses  int64 `json:"misses"`  // gets that found nothing
	Expired int64 `json:"expired"` // entries evicted because their TTL passed
}

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Engine is the generic interface for interacting with a key-value engine.
// All write operations return only an error (nil on success), while read
// operations return the requested data along with an error (nil on success).
//
// All methods are safe for concurrent use from multiple goroutines against
// one engine handle. Operations on the same key are linearized by the
// engine's state lock; operations on different keys carry no cross-key
// ordering guarantee beyond each being internally atomic.
type Engine interface {
	// Get returns the value for a key. The boolean return value indicates
	// whether a live (not expired) value for the key was found.
	Get(key string) (value []byte, found bool, err error)
	// Set inserts or updates a key-value pair. A ttl of zero means the
	// engine default TTL applies (or no expiry if none is configured).
	// Overwriting an existing key is not an error.
	Set(key string, value []byte, ttl time.Duration) (err error)
	// Update replaces the value for an existing key. If the key is absent
	// and upsert is false, Update is a no-op and returns nil. If the key is
	// absent and upsert is true, Update behaves like Set.
	Update(key string, value []byte, ttl time.Duration, upsert bool) (err error)
	// Delete removes a key-value pair. Deleting an absent key is a no-op.
	Delete(key string) (err error)
	// Exists reports whether a live entry for the key is present.
	Exists(key string) (found bool, err error)
	// Keys returns the keys of all live entries (in no particular order).
	Keys() (keys []string, err error)
	// Values returns the values of all live entries (in no particular order).
	Values() (values [][]byte, err error)
	// Len returns the number of live entries.
	Len() (n int, err error)
	// Purge removes all entries. Disk-backed engines also truncate the log.
	Purge() (err error)

	// GetMany applies Get to every key in order. found[i] reports whether
	// keys[i] was present.
	GetMany(keys []string) (values [][]byte, found []bool, err error)
	// SetMany applies Set to every item in order. A failure part-way through
	// leaves the items before it already applied.
	SetMany(items []Item) (err error)
	// DeleteMany applies Delete to every key in order.
	DeleteMany(keys []string) (err error)
	// UpdateMany applies Update to every item in order.
	UpdateMany(items []Item, upsert bool) (err error)

	// Info returns metadata about the engine.
	Info() (info EngineInfo)
	// Close stops the background sweeper and releases the backing file.
	// Any operation after Close fails with RetCInvalidOperation.
	Close() (err error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode),
// an error message and optionally the underlying cause.
type Error struct {
	Code  RetCode // The return code
	Msg   string  // The error message
	Cause error   // The underlying error, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("KVError (code %s): %s: %v", e.Code, e.Msg, e.Cause)
	}
	return fmt.Sprintf("KVError (code %s): %s", e.Code, e.Msg)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// WrapError creates a new Error with the given code, message and cause.
func WrapError(code RetCode, msg string, cause error) *Error {
	return &Error{Code: code, Msg: msg, Cause: cause}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess          RetCode = iota // 0: Command executed successfully.
	RetCInternalError                   // 1: Command failed due to an internal error.
	RetCIOError                         // 2: A file operation (open, read, write, sync, truncate) failed.
	RetCCorruptData                     // 3: A record on disk could not be decoded.
	RetCInvalidOperation                // 4: Invalid operation (e.g. use after Close).
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCIOError:
		return "IOError"
	case RetCCorruptData:
		return "CorruptData"
	case RetCInvalidOperation:
		return "InvalidOperation"
	default:
		return "Unknown"
	}
}
