package quick

import (
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/quickkv/quickkv/lib/kv"
	"github.com/quickkv/quickkv/lib/kv/codec"
	"github.com/quickkv/quickkv/lib/kv/journal"
	"github.com/quickkv/quickkv/lib/logging"
)

// --------------------------------------------------------------------------
// Core Engine Structure
// --------------------------------------------------------------------------

// database implements kv.Engine: an in-memory entry cache backed by a
// durable record log (disk runtime) or nothing at all (memory runtime).
type database struct {
	cfg Config
	log logging.ILogger

	// mu guards state (entries and expiration index together) and closed.
	// It is the serialization point for all mutating operations: it is held
	// across the journal I/O of every write path, so operations on the same
	// key are linearized and the (map, index, file) triple can never be
	// observed mid-mutation. The throughput cost of holding it across the
	// rewrite-based update/delete paths is an accepted property of the
	// design.
	mu     sync.Mutex
	state  *state
	closed bool

	// journal is nil for the memory runtime
	journal *journal.Journal

	// background expiration sweeper
	sweepCh   chan sweepSignal
	sweepDone chan struct{}

	// hot-path counters, surfaced via Info()
	statHits    *xsync.Counter
	statMisses  *xsync.Counter
	statExpired *xsync.Counter
}

// New creates a new engine instance with the specified configuration.
//
// With the disk runtime the backing file is opened (or created) and fully
// replayed into the in-memory state before New returns; later records for
// the same key overwrite earlier ones. The memory runtime skips all file
// operations and starts empty.
//
// Thread-safety: the returned engine is safe for concurrent use. New itself
// should only be called once per backing file; multi-process coordination
// is out of scope.
func New(cfg Config) (kv.Engine, error) {
	cfg, log, err := cfg.withDefaults()
	if err != nil {
		return nil, kv.WrapError(kv.RetCInternalError, "invalid configuration", err)
	}

	log.Infof("[Bootstrap] building database state (runtime=%s)", cfg.Runtime)

	db := &database{
		cfg:         cfg,
		log:         log,
		state:       newState(),
		statHits:    xsync.NewCounter(),
		statMisses:  xsync.NewCounter(),
		statExpired: xsync.NewCounter(),
	}

	if cfg.Runtime == kv.RuntimeDisk {
		path, err := preparePath(cfg.Path)
		if err != nil {
			return nil, kv.WrapError(kv.RetCIOError, "failed to prepare database path", err)
		}
		db.cfg.Path = path

		j, err := journal.Open(path)
		if err != nil {
			return nil, kv.WrapError(kv.RetCIOError, "failed to open journal", err)
		}
		db.journal = j
		log.Debugf("[Bootstrap] database file created or opened: %s", path)

		if err := db.hydrate(); err != nil {
			_ = j.Close()
			return nil, err
		}
	}

	db.startSweeper(cfg.SweepInterval)

	log.Infof("[Bootstrap] engine initialized with %d cached entries", db.state.size())

	return db, nil
}

// hydrate replays the record log into the empty state. Records are applied
// in file order, so a later record for a key supersedes an earlier one.
func (db *database) hydrate() error {
	count := 0
	err := db.journal.Scan(func(rec codec.Record) error {
		db.state.put(entry{key: rec.Key, value: rec.Value, expiresAt: rec.ExpiresAt})
		count++
		return nil
	})
	if err != nil {
		return kv.WrapError(kv.RetCCorruptData, "failed to replay journal", err)
	}
	db.log.Debugf("[Bootstrap] loaded %d records into cache", count)
	return nil
}

// --------------------------------------------------------------------------
// Interface Methods - Reads (docu see kv.Engine)
// --------------------------------------------------------------------------

func (db *database) Get(key string) ([]byte, bool, error) {
	defer trackOp("get")()

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil, false, errClosed("Get")
	}

	e, ok := db.state.get(key)
	if !ok {
		db.statMisses.Inc()
		return nil, false, nil
	}

	// lazy expiration: an expired entry is evicted before it is ever
	// returned to a caller
	if e.expired(time.Now().UnixNano()) {
		db.state.remove(key)
		db.statExpired.Inc()
		db.statMisses.Inc()
		db.log.Debugf("[GET] key expired on access: %s", key)
		return nil, false, nil
	}

	db.statHits.Inc()

	// copy so callers can't mutate the cached value
	value := make([]byte, len(e.value))
	copy(value, e.value)
	return value, true, nil
}

func (db *database) Exists(key string) (bool, error) {
	defer trackOp("exists")()

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return false, errClosed("Exists")
	}

	e, ok := db.state.get(key)
	if !ok {
		return false, nil
	}
	if e.expired(time.Now().UnixNano()) {
		db.state.remove(key)
		db.statExpired.Inc()
		return false, nil
	}
	return true, nil
}

func (db *database) Keys() ([]string, error) {
	defer trackOp("keys")()

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil, errClosed("Keys")
	}

	db.evictExpiredLocked()

	keys := make([]string, 0, db.state.size())
	for key := range db.state.entries {
		keys = append(keys, key)
	}
	return keys, nil
}

func (db *database) Values() ([][]byte, error) {
	defer trackOp("values")()

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil, errClosed("Values")
	}

	db.evictExpiredLocked()

	values := make([][]byte, 0, db.state.size())
	for _, e := range db.state.entries {
		value := make([]byte, len(e.value))
		copy(value, e.value)
		values = append(values, value)
	}
	return values, nil
}

func (db *database) Len() (int, error) {
	defer trackOp("len")()

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return 0, errClosed("Len")
	}

	db.evictExpiredLocked()

	return db.state.size(), nil
}

// evictExpiredLocked removes every expired entry so enumeration results
// never contain logically deleted data. Caller must hold db.mu.
func (db *database) evictExpiredLocked() {
	now := time.Now().UnixNano()
	for _, key := range db.state.expiredKeys(now) {
		db.state.remove(key)
		db.statExpired.Inc()
	}
}

// --------------------------------------------------------------------------
// Interface Methods - Writes (docu see kv.Engine)
// --------------------------------------------------------------------------

// Write ordering: every mutating path writes the journal first and applies
// the in-memory change only after the disk write succeeded. A failed append
// or rewrite therefore leaves the cache exactly as it was.

func (db *database) Set(key string, value []byte, ttl time.Duration) error {
	defer trackOp("set")()

	expiresAt := effectiveExpiry(ttl, db.cfg.DefaultTTL, time.Now())

	// copy to prevent mutation of the cached value by the caller
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return errClosed("Set")
	}

	if db.journal != nil {
		if err := db.journal.Append(codec.Record{Key: key, Value: valueCopy, ExpiresAt: expiresAt}); err != nil {
			trackOpError("set")
			return kv.WrapError(kv.RetCIOError, "failed to append record", err)
		}
	}

	db.state.put(entry{key: key, value: valueCopy, expiresAt: expiresAt})
	db.log.Debugf("[SET] key set: %s", key)
	return nil
}

func (db *database) Update(key string, value []byte, ttl time.Duration, upsert bool) error {
	defer trackOp("update")()

	now := time.Now()
	expiresAt := effectiveExpiry(ttl, db.cfg.DefaultTTL, now)

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return errClosed("Update")
	}

	e, ok := db.state.get(key)
	if ok && e.expired(now.UnixNano()) {
		db.state.remove(key)
		db.statExpired.Inc()
		ok = false
	}

	if !ok {
		if !upsert {
			// not an error: callers that need to distinguish "updated" from
			// "skipped" check Exists first
			db.log.Debugf("[UPDATE] key not found, skipping: %s", key)
			return nil
		}
		// upsert behaves like Set
		if db.journal != nil {
			if err := db.journal.Append(codec.Record{Key: key, Value: valueCopy, ExpiresAt: expiresAt}); err != nil {
				trackOpError("update")
				return kv.WrapError(kv.RetCIOError, "failed to append record", err)
			}
		}
		db.state.put(entry{key: key, value: valueCopy, expiresAt: expiresAt})
		db.log.Debugf("[UPDATE] key upserted: %s", key)
		return nil
	}

	if db.journal != nil {
		if err := db.rewriteLocked(key, &codec.Record{Key: key, Value: valueCopy, ExpiresAt: expiresAt}); err != nil {
			trackOpError("update")
			return err
		}
	}

	db.state.put(entry{key: key, value: valueCopy, expiresAt: expiresAt})
	db.log.Debugf("[UPDATE] key updated: %s", key)
	return nil
}

func (db *database) Delete(key string) error {
	defer trackOp("delete")()

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return errClosed("Delete")
	}

	if _, ok := db.state.get(key); !ok {
		db.log.Debugf("[DELETE] key not found: %s", key)
		return nil
	}

	if db.journal != nil {
		if err := db.rewriteLocked(key, nil); err != nil {
			trackOpError("delete")
			return err
		}
	}

	db.state.remove(key)
	db.log.Debugf("[DELETE] key deleted: %s", key)
	return nil
}

func (db *database) Purge() error {
	defer trackOp("purge")()

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return errClosed("Purge")
	}

	if db.journal != nil {
		if err := db.journal.Truncate(); err != nil {
			trackOpError("purge")
			return kv.WrapError(kv.RetCIOError, "failed to truncate journal", err)
		}
	}

	db.state.clear()
	db.log.Infof("[PURGE] database purged")
	return nil
}

// rewriteLocked captures the current log contents, drops every record for
// key and appends replacement (if non-nil) once at the end, then replaces
// the log with the result. Deduplicating the touched key means exactly one
// live record for it survives the rewrite even if the log held superseded
// versions. Caller must hold db.mu: the snapshot and rewrite phases use
// different file handles and are only atomic under the state lock.
func (db *database) rewriteLocked(key string, replacement *codec.Record) error {
	recs, err := db.journal.Snapshot()
	if err != nil {
		return kv.WrapError(kv.RetCCorruptData, "failed to capture journal contents", err)
	}

	kept := recs[:0]
	for _, rec := range recs {
		if rec.Key != key {
			kept = append(kept, rec)
		}
	}
	if replacement != nil {
		kept = append(kept, *replacement)
	}

	if err := db.journal.Rewrite(kept); err != nil {
		return kv.WrapError(kv.RetCIOError, "failed to rewrite journal", err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Interface Methods - Batch Operations (docu see kv.Engine)
// --------------------------------------------------------------------------

// The batch forms are the sequential application of the single-key
// operation. No cross-key atomicity: a failure part-way through leaves
// prior keys in the batch already applied.

func (db *database) GetMany(keys []string) ([][]byte, []bool, error) {
	values := make([][]byte, len(keys))
	found := make([]bool, len(keys))
	for i, key := range keys {
		value, ok, err := db.Get(key)
		if err != nil {
			return nil, nil, err
		}
		values[i] = value
		found[i] = ok
	}
	return values, found, nil
}

func (db *database) SetMany(items []kv.Item) error {
	for _, item := range items {
		if err := db.Set(item.Key, item.Value, item.TTL); err != nil {
			return err
		}
	}
	return nil
}

func (db *database) DeleteMany(keys []string) error {
	for _, key := range keys {
		if err := db.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func (db *database) UpdateMany(items []kv.Item, upsert bool) error {
	for _, item := range items {
		if err := db.Update(item.Key, item.Value, item.TTL, upsert); err != nil {
			return err
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Interface Methods - Metadata and Lifecycle (docu see kv.Engine)
// --------------------------------------------------------------------------

func (db *database) Info() kv.EngineInfo {
	db.mu.Lock()
	entries := int64(db.state.size())
	db.mu.Unlock()

	info := kv.EngineInfo{
		Runtime: db.cfg.Runtime,
		Entries: entries,
		Hits:    db.statHits.Value(),
		Misses:  db.statMisses.Value(),
		Expired: db.statExpired.Value(),
	}
	if db.cfg.Runtime == kv.RuntimeDisk {
		info.Path = db.cfg.Path
	}
	return info
}

func (db *database) Close() error {
	db.mu.Lock()
	if db.closed {
		db.mu.Unlock()
		return nil
	}
	db.closed = true
	db.mu.Unlock()

	// the sweeper takes db.mu per pass, so it must be stopped outside the lock
	db.stopSweeper()

	if db.journal != nil {
		if err := db.journal.Close(); err != nil {
			return kv.WrapError(kv.RetCIOError, "failed to close journal", err)
		}
	}

	db.log.Infof("[Shutdown] engine closed")
	return nil
}

// errClosed reports an operation against a closed engine. The in-memory
// state can no longer be trusted at that point, so this is fatal for the
// handle rather than recoverable.
func errClosed(op string) *kv.Error {
	return kv.NewError(kv.RetCInvalidOperation, op+" called on closed engine")
}
