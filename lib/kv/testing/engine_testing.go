package testing

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/quickkv/quickkv/lib/kv"
)

// EngineFactory is a function that creates a fresh, empty instance of a
// kv.Engine implementation.
type EngineFactory func(t *testing.T) kv.Engine

// RunEngineTests runs a conformance test suite for a kv.Engine
// implementation. The suite covers the full engine contract except
// durability across restarts, which depends on implementation-specific
// construction and is tested by the implementation's own package.
func RunEngineTests(t *testing.T, name string, factory EngineFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("RoundTrip", func(t *testing.T) {
			testRoundTrip(t, factory(t))
		})

		t.Run("Overwrite", func(t *testing.T) {
			testOverwrite(t, factory(t))
		})

		t.Run("DeleteIdempotence", func(t *testing.T) {
			testDeleteIdempotence(t, factory(t))
		})

		t.Run("TTLExpiry", func(t *testing.T) {
			testTTLExpiry(t, factory(t))
		})

		t.Run("UpdateWithoutUpsert", func(t *testing.T) {
			testUpdateWithoutUpsert(t, factory(t))
		})

		t.Run("UpdateWithUpsert", func(t *testing.T) {
			testUpdateWithUpsert(t, factory(t))
		})

		t.Run("ExistsKeysValuesLen", func(t *testing.T) {
			testExistsKeysValuesLen(t, factory(t))
		})

		t.Run("BatchOperations", func(t *testing.T) {
			testBatchOperations(t, factory(t))
		})

		t.Run("Purge", func(t *testing.T) {
			testPurge(t, factory(t))
		})

		t.Run("UseAfterClose", func(t *testing.T) {
			testUseAfterClose(t, factory(t))
		})

		t.Run("RealisticUsage", func(t *testing.T) {
			testRealisticUsage(t, factory(t))
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func mustSet(t testing.TB, e kv.Engine, key string, value []byte, ttl time.Duration) {
	t.Helper()
	if err := e.Set(key, value, ttl); err != nil {
		t.Fatalf("Set(%q) failed: %v", key, err)
	}
}

func mustGet(t testing.TB, e kv.Engine, key string) ([]byte, bool) {
	t.Helper()
	value, found, err := e.Get(key)
	if err != nil {
		t.Fatalf("Get(%q) failed: %v", key, err)
	}
	return value, found
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testRoundTrip(t *testing.T, e kv.Engine) {
	defer e.Close()

	tests := []struct {
		key   string
		value []byte
	}{
		{"string", []byte("hello world")},
		{"empty", []byte{}},
		{"binary", []byte{0x00, 0xFF, 0x42, 0x00}},
		{"unicode-key-äöü", []byte("value")},
		{"large", bytes.Repeat([]byte("x"), 64*1024)},
	}

	for _, tt := range tests {
		mustSet(t, e, tt.key, tt.value, 0)
	}

	for _, tt := range tests {
		value, found := mustGet(t, e, tt.key)
		if !found {
			t.Errorf("expected key %q to exist after Set", tt.key)
			continue
		}
		if !bytes.Equal(value, tt.value) {
			t.Errorf("key %q: expected value %q, got %q", tt.key, tt.value, value)
		}
	}

	if _, found := mustGet(t, e, "never-set"); found {
		t.Error("expected absent key to report found=false")
	}
}

func testOverwrite(t *testing.T, e kv.Engine) {
	defer e.Close()

	mustSet(t, e, "key", []byte("v1"), 0)
	mustSet(t, e, "key", []byte("v2"), 0)

	value, found := mustGet(t, e, "key")
	if !found {
		t.Fatal("expected key to exist after overwrite")
	}
	if !bytes.Equal(value, []byte("v2")) {
		t.Errorf("expected latest value v2, got %q", value)
	}

	if n, err := e.Len(); err != nil || n != 1 {
		t.Errorf("expected exactly one live entry, got %d (err=%v)", n, err)
	}
}

func testDeleteIdempotence(t *testing.T, e kv.Engine) {
	defer e.Close()

	// deleting an absent key is a no-op success
	if err := e.Delete("ghost"); err != nil {
		t.Errorf("Delete on absent key must succeed, got %v", err)
	}

	mustSet(t, e, "key", []byte("value"), 0)
	if err := e.Delete("key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, found := mustGet(t, e, "key"); found {
		t.Error("expected key to be gone after Delete")
	}

	// deleting again is still a no-op success
	if err := e.Delete("key"); err != nil {
		t.Errorf("second Delete must succeed, got %v", err)
	}
}

func testTTLExpiry(t *testing.T, e kv.Engine) {
	defer e.Close()

	mustSet(t, e, "ephemeral", []byte("gone soon"), 50*time.Millisecond)
	mustSet(t, e, "durable", []byte("stays"), 0)

	// still live right after the write
	if _, found := mustGet(t, e, "ephemeral"); !found {
		t.Fatal("expected entry to be live before its TTL passed")
	}

	time.Sleep(100 * time.Millisecond)

	if _, found := mustGet(t, e, "ephemeral"); found {
		t.Error("expected entry to be evicted after its TTL passed")
	}

	keys, err := e.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	for _, key := range keys {
		if key == "ephemeral" {
			t.Error("expected expired key to be absent from Keys()")
		}
	}

	if _, found := mustGet(t, e, "durable"); !found {
		t.Error("expected entry without TTL to survive")
	}
}

func testUpdateWithoutUpsert(t *testing.T, e kv.Engine) {
	defer e.Close()

	// update on a key never set: no-op success, not an error
	if err := e.Update("missing", []byte("value"), 0, false); err != nil {
		t.Fatalf("Update on missing key must succeed as no-op, got %v", err)
	}
	if _, found := mustGet(t, e, "missing"); found {
		t.Error("expected no entry to be created by Update without upsert")
	}

	mustSet(t, e, "key", []byte("v1"), 0)
	if err := e.Update("key", []byte("v2"), 0, false); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	value, _ := mustGet(t, e, "key")
	if !bytes.Equal(value, []byte("v2")) {
		t.Errorf("expected updated value v2, got %q", value)
	}
}

func testUpdateWithUpsert(t *testing.T, e kv.Engine) {
	defer e.Close()

	if err := e.Update("fresh", []byte("created"), 0, true); err != nil {
		t.Fatalf("Update with upsert failed: %v", err)
	}
	value, found := mustGet(t, e, "fresh")
	if !found {
		t.Fatal("expected upsert to create the entry")
	}
	if !bytes.Equal(value, []byte("created")) {
		t.Errorf("expected value %q, got %q", "created", value)
	}
}

func testExistsKeysValuesLen(t *testing.T, e kv.Engine) {
	defer e.Close()

	want := map[string]string{"a": "1", "b": "2", "c": "3"}
	for key, value := range want {
		mustSet(t, e, key, []byte(value), 0)
	}

	if found, err := e.Exists("a"); err != nil || !found {
		t.Errorf("expected Exists(a)=true, got %v (err=%v)", found, err)
	}
	if found, err := e.Exists("nope"); err != nil || found {
		t.Errorf("expected Exists(nope)=false, got %v (err=%v)", found, err)
	}

	keys, err := e.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Errorf("unexpected keys: %v", keys)
	}

	values, err := e.Values()
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	if len(values) != 3 {
		t.Errorf("expected 3 values, got %d", len(values))
	}

	if n, err := e.Len(); err != nil || n != 3 {
		t.Errorf("expected Len()=3, got %d (err=%v)", n, err)
	}
}

func testBatchOperations(t *testing.T, e kv.Engine) {
	defer e.Close()

	items := []kv.Item{
		{Key: "k1", Value: []byte("v1")},
		{Key: "k2", Value: []byte("v2")},
		{Key: "k3", Value: []byte("v3")},
	}
	if err := e.SetMany(items); err != nil {
		t.Fatalf("SetMany failed: %v", err)
	}

	// results come back in request order, including misses
	values, found, err := e.GetMany([]string{"k1", "nope", "k3"})
	if err != nil {
		t.Fatalf("GetMany failed: %v", err)
	}
	if !found[0] || found[1] || !found[2] {
		t.Errorf("unexpected found flags: %v", found)
	}
	if !bytes.Equal(values[0], []byte("v1")) || !bytes.Equal(values[2], []byte("v3")) {
		t.Errorf("unexpected values: %q", values)
	}

	if err := e.UpdateMany([]kv.Item{
		{Key: "k1", Value: []byte("u1")},
		{Key: "k4", Value: []byte("u4")}, // absent, no upsert: skipped
	}, false); err != nil {
		t.Fatalf("UpdateMany failed: %v", err)
	}
	if value, _ := mustGet(t, e, "k1"); !bytes.Equal(value, []byte("u1")) {
		t.Errorf("expected k1 updated to u1, got %q", value)
	}
	if _, found := mustGet(t, e, "k4"); found {
		t.Error("expected k4 to stay absent")
	}

	if err := e.DeleteMany([]string{"k1", "k2"}); err != nil {
		t.Fatalf("DeleteMany failed: %v", err)
	}
	if n, _ := e.Len(); n != 1 {
		t.Errorf("expected one entry left, got %d", n)
	}
}

func testPurge(t *testing.T, e kv.Engine) {
	defer e.Close()

	for i := 0; i < 10; i++ {
		mustSet(t, e, fmt.Sprintf("key-%d", i), []byte("value"), 0)
	}

	if err := e.Purge(); err != nil {
		t.Fatalf("Purge failed: %v", err)
	}

	if n, err := e.Len(); err != nil || n != 0 {
		t.Errorf("expected Len()=0 after Purge, got %d (err=%v)", n, err)
	}
	keys, err := e.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("expected no keys after Purge, got %v", keys)
	}
}

func testUseAfterClose(t *testing.T, e kv.Engine) {
	mustSet(t, e, "key", []byte("value"), 0)

	if err := e.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Close is idempotent
	if err := e.Close(); err != nil {
		t.Errorf("second Close must succeed, got %v", err)
	}

	if err := e.Set("key", []byte("value"), 0); err == nil {
		t.Error("expected Set on closed engine to fail")
	}
	if _, _, err := e.Get("key"); err == nil {
		t.Error("expected Get on closed engine to fail")
	}
}

func testRealisticUsage(t *testing.T, e kv.Engine) {
	defer e.Close()

	// concurrent mixed workload; every operation must stay internally
	// consistent even while others run
	const (
		goroutines = 8
		opsPerG    = 50
	)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(g int) {
			defer wg.Done()
			key := fmt.Sprintf("worker-%d", g)
			for i := 0; i < opsPerG; i++ {
				value := []byte(fmt.Sprintf("value-%d", i))
				if err := e.Set(key, value, 0); err != nil {
					t.Errorf("Set failed: %v", err)
					return
				}
				got, found, err := e.Get(key)
				if err != nil {
					t.Errorf("Get failed: %v", err)
					return
				}
				// another goroutine never writes this key, so the read
				// must observe the write linearized before it
				if !found || !bytes.Equal(got, value) {
					t.Errorf("goroutine %d: read %q after writing %q", g, got, value)
					return
				}
				if i%10 == 9 {
					if err := e.Delete(key); err != nil {
						t.Errorf("Delete failed: %v", err)
						return
					}
				}
			}
		}(g)
	}
	wg.Wait()
}
