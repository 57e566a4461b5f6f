package quick

import (
	"testing"
)

func TestStateIndexStaysInSyncOnOverwrite(t *testing.T) {
	s := newState()

	s.put(entry{key: "k", value: []byte("v1"), expiresAt: 100})
	s.put(entry{key: "k", value: []byte("v2"), expiresAt: 200})

	// the stale (100, k) pair must be gone: were it still present, a sweep
	// at t=100 would evict the live successor entry
	if keys := s.expiredKeys(150); len(keys) != 0 {
		t.Errorf("stale index member survived overwrite: %v", keys)
	}
	if keys := s.expiredKeys(250); len(keys) != 1 || keys[0] != "k" {
		t.Errorf("expected the new index member at t=200, got %v", keys)
	}
}

func TestStateIndexStaysInSyncOnRemove(t *testing.T) {
	s := newState()

	s.put(entry{key: "k", value: []byte("v"), expiresAt: 100})
	if !s.remove("k") {
		t.Fatal("expected remove to report an existing entry")
	}
	if keys := s.expiredKeys(200); len(keys) != 0 {
		t.Errorf("index member survived remove: %v", keys)
	}
	if s.remove("k") {
		t.Error("expected remove of absent key to report false")
	}
}

func TestStateOverwriteToNoExpiry(t *testing.T) {
	s := newState()

	s.put(entry{key: "k", value: []byte("v"), expiresAt: 100})
	s.put(entry{key: "k", value: []byte("v")}) // no expiry anymore

	if keys := s.expiredKeys(1 << 60); len(keys) != 0 {
		t.Errorf("expected no index members for a never-expiring entry, got %v", keys)
	}
	if _, ok := s.get("k"); !ok {
		t.Error("expected entry to still exist")
	}
}

func TestExpiredKeysIsPrefixScan(t *testing.T) {
	s := newState()

	s.put(entry{key: "a", value: nil, expiresAt: 10})
	s.put(entry{key: "b", value: nil, expiresAt: 20})
	s.put(entry{key: "c", value: nil, expiresAt: 30})
	// tie on the timestamp: the key breaks the tie, both stay distinct
	s.put(entry{key: "d", value: nil, expiresAt: 20})

	keys := s.expiredKeys(20)
	if len(keys) != 3 {
		t.Fatalf("expected 3 expired keys at t=20, got %v", keys)
	}
	if keys[0] != "a" || keys[1] != "b" || keys[2] != "d" {
		t.Errorf("expected (10,a),(20,b),(20,d) in index order, got %v", keys)
	}
}

func TestStateClear(t *testing.T) {
	s := newState()

	s.put(entry{key: "a", value: nil, expiresAt: 10})
	s.put(entry{key: "b", value: nil})
	s.clear()

	if s.size() != 0 {
		t.Errorf("expected empty state, got %d entries", s.size())
	}
	if keys := s.expiredKeys(1 << 60); len(keys) != 0 {
		t.Errorf("expected empty index, got %v", keys)
	}
}
