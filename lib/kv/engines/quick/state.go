package quick

import (
	"github.com/tidwall/btree"
)

// --------------------------------------------------------------------------
// Entry Type
// --------------------------------------------------------------------------

// entry is the in-memory representation of one stored record.
type entry struct {
	key       string
	value     []byte
	expiresAt int64 // unix nanoseconds, 0 = never expires
}

// expired reports whether the entry's TTL has passed at the given time.
func (e entry) expired(now int64) bool {
	return e.expiresAt != 0 && now >= e.expiresAt
}

// --------------------------------------------------------------------------
// Expiration Index
// --------------------------------------------------------------------------

// expiration is one member of the ordered expiration index.
type expiration struct {
	at  int64 // unix nanoseconds
	key string
}

// expirationLess orders the index by (timestamp asc, key asc). The key
// component breaks ties so that two entries expiring in the same instant
// both keep exactly one index member.
func expirationLess(a, b expiration) bool {
	if a.at != b.at {
		return a.at < b.at
	}
	return a.key < b.key
}

// --------------------------------------------------------------------------
// State Type
// --------------------------------------------------------------------------

// state is the in-memory authoritative view of the engine: all live entries
// plus the expiration index that makes "what expires next" a prefix scan
// instead of a full scan.
//
// Invariant: an entry with expiresAt = t has exactly one (t, key) member in
// the index; overwriting or removing an entry removes the stale member
// first. A stale member is a correctness bug, not a performance nuisance:
// it could evict a live successor entry sharing the same key.
//
// Thread-safety: state is NOT synchronized. The engine guards every access
// (including the background sweeper's) with one mutex covering entries and
// expirations together, so the pair can never be observed inconsistent.
type state struct {
	entries     map[string]entry
	expirations *btree.BTreeG[expiration]
}

// newState creates an empty state.
func newState() *state {
	return &state{
		entries:     make(map[string]entry),
		expirations: btree.NewBTreeG[expiration](expirationLess),
	}
}

// get returns the entry for a key, expired or not. Expiry is the caller's
// concern: the engine evicts lazily, the sweeper actively.
func (s *state) get(key string) (entry, bool) {
	e, ok := s.entries[key]
	return e, ok
}

// put inserts or overwrites the entry for a key and keeps the expiration
// index in sync.
func (s *state) put(e entry) {
	if old, ok := s.entries[e.key]; ok && old.expiresAt != 0 {
		s.expirations.Delete(expiration{at: old.expiresAt, key: old.key})
	}
	s.entries[e.key] = e
	if e.expiresAt != 0 {
		s.expirations.Set(expiration{at: e.expiresAt, key: e.key})
	}
}

// remove deletes the entry for a key (and its index member, if any).
// It reports whether an entry existed.
func (s *state) remove(key string) bool {
	e, ok := s.entries[key]
	if !ok {
		return false
	}
	delete(s.entries, key)
	if e.expiresAt != 0 {
		s.expirations.Delete(expiration{at: e.expiresAt, key: e.key})
	}
	return true
}

// clear drops all entries and index members.
func (s *state) clear() {
	s.entries = make(map[string]entry)
	s.expirations = btree.NewBTreeG[expiration](expirationLess)
}

// size returns the number of cached entries (live and not-yet-evicted).
func (s *state) size() int {
	return len(s.entries)
}

// expiredKeys walks the index from its earliest member and collects every
// key whose timestamp is <= now, stopping at the first non-expired member.
// The ordering invariant makes this a prefix scan.
func (s *state) expiredKeys(now int64) []string {
	var keys []string
	s.expirations.Scan(func(x expiration) bool {
		if x.at > now {
			return false
		}
		keys = append(keys, x.key)
		return true
	})
	return keys
}
