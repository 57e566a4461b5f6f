package quick

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quickkv/quickkv/lib/kv"
	"github.com/quickkv/quickkv/lib/kv/codec"
	"github.com/quickkv/quickkv/lib/kv/journal"
	kvtesting "github.com/quickkv/quickkv/lib/kv/testing"
)

// --------------------------------------------------------------------------
// Conformance suite
// --------------------------------------------------------------------------

func TestEngineConformance(t *testing.T) {
	kvtesting.RunEngineTests(t, "quick/disk", func(t *testing.T) kv.Engine {
		e, err := New(Config{
			Path:    filepath.Join(t.TempDir(), "conformance.qkv"),
			Runtime: kv.RuntimeDisk,
		})
		if err != nil {
			t.Fatalf("failed to create disk engine: %v", err)
		}
		return e
	})

	kvtesting.RunEngineTests(t, "quick/memory", func(t *testing.T) kv.Engine {
		e, err := New(Config{Runtime: kv.RuntimeMemory})
		if err != nil {
			t.Fatalf("failed to create memory engine: %v", err)
		}
		return e
	})
}

// --------------------------------------------------------------------------
// Durability across restarts
// --------------------------------------------------------------------------

func newDiskEngine(t *testing.T, path string) kv.Engine {
	t.Helper()
	e, err := New(Config{Path: path, Runtime: kv.RuntimeDisk})
	if err != nil {
		t.Fatalf("failed to create engine on %s: %v", path, err)
	}
	return e
}

func TestDurabilityAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "restart.qkv")

	a := newDiskEngine(t, path)
	if err := a.Set("x", []byte("42"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	b := newDiskEngine(t, path)
	defer b.Close()

	value, found, err := b.Get("x")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("expected key to survive the restart")
	}
	if !bytes.Equal(value, []byte("42")) {
		t.Errorf("expected value 42, got %q", value)
	}
}

func TestDeleteSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "delete.qkv")

	a := newDiskEngine(t, path)
	if err := a.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := a.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	_ = a.Close()

	b := newDiskEngine(t, path)
	defer b.Close()

	if _, found, _ := b.Get("k"); found {
		t.Error("expected deleted key to stay gone after a restart")
	}
}

func TestUpdateSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "update.qkv")

	a := newDiskEngine(t, path)
	if err := a.Set("k", []byte("v1"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := a.Update("k", []byte("v2"), 0, false); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	_ = a.Close()

	b := newDiskEngine(t, path)
	defer b.Close()

	value, found, err := b.Get("k")
	if err != nil || !found {
		t.Fatalf("expected key after restart, found=%v err=%v", found, err)
	}
	if !bytes.Equal(value, []byte("v2")) {
		t.Errorf("expected updated value v2, got %q", value)
	}
}

func TestPurgeSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "purge.qkv")

	a := newDiskEngine(t, path)
	for _, k := range []string{"a", "b", "c"} {
		if err := a.Set(k, []byte("v"), 0); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	if err := a.Purge(); err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	_ = a.Close()

	b := newDiskEngine(t, path)
	defer b.Close()

	if n, _ := b.Len(); n != 0 {
		t.Errorf("expected empty engine after purge and restart, got %d entries", n)
	}
}

func TestTTLSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ttl.qkv")

	a := newDiskEngine(t, path)
	if err := a.Set("ephemeral", []byte("v"), 50*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	_ = a.Close()

	time.Sleep(100 * time.Millisecond)

	// the log still holds the record, but it must come back expired
	b := newDiskEngine(t, path)
	defer b.Close()

	if _, found, _ := b.Get("ephemeral"); found {
		t.Error("expected entry to be expired after reload")
	}
}

// --------------------------------------------------------------------------
// Log compaction behavior
// --------------------------------------------------------------------------

func TestRewriteLeavesSingleRecordPerKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compact.qkv")

	e := newDiskEngine(t, path)
	// superseded versions accumulate in the log
	for i := 0; i < 5; i++ {
		if err := e.Set("hot", []byte{byte(i)}, 0); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	if err := e.Set("other", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	// any rewrite-based mutation compacts the touched key
	if err := e.Update("hot", []byte("final"), 0, false); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	_ = e.Close()

	j, err := journal.Open(path)
	if err != nil {
		t.Fatalf("failed to reopen journal: %v", err)
	}
	defer j.Close()

	recs, err := j.Snapshot()
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	hot := 0
	for _, rec := range recs {
		if rec.Key == "hot" {
			hot++
			if !bytes.Equal(rec.Value, []byte("final")) {
				t.Errorf("expected surviving record to hold the final value, got %q", rec.Value)
			}
		}
	}
	if hot != 1 {
		t.Errorf("expected exactly one record for the rewritten key, got %d", hot)
	}
}

// --------------------------------------------------------------------------
// Failure modes
// --------------------------------------------------------------------------

func TestCorruptLogFailsConstruction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.qkv")

	valid := codec.Encode(codec.Record{Key: "k", Value: []byte("v")})
	corrupt := append(valid, 0xDE, 0xAD, 0xBE) // torn tail
	if err := os.WriteFile(path, corrupt, 0666); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	_, err := New(Config{Path: path, Runtime: kv.RuntimeDisk})
	if err == nil {
		t.Fatal("expected construction to fail on a corrupt log")
	}
	var kvErr *kv.Error
	if !errors.As(err, &kvErr) || kvErr.Code != kv.RetCCorruptData {
		t.Errorf("expected RetCCorruptData, got %v", err)
	}
}

func TestMemoryRuntimeCreatesNoFile(t *testing.T) {
	dir := t.TempDir()

	e, err := New(Config{Path: filepath.Join(dir, "never.qkv"), Runtime: kv.RuntimeMemory})
	if err != nil {
		t.Fatalf("failed to create memory engine: %v", err)
	}
	if err := e.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	_ = e.Close()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no files for memory runtime, found %d", len(entries))
	}
}

// --------------------------------------------------------------------------
// Info
// --------------------------------------------------------------------------

func TestInfoCounters(t *testing.T) {
	e := newDiskEngine(t, filepath.Join(t.TempDir(), "info.qkv"))
	defer e.Close()

	_ = e.Set("a", []byte("1"), 0)
	_, _, _ = e.Get("a")      // hit
	_, _, _ = e.Get("ghost")  // miss
	_, _, _ = e.Get("absent") // miss

	info := e.Info()
	if info.Runtime != kv.RuntimeDisk {
		t.Errorf("expected disk runtime, got %s", info.Runtime)
	}
	if info.Entries != 1 {
		t.Errorf("expected 1 entry, got %d", info.Entries)
	}
	if info.Hits != 1 || info.Misses != 2 {
		t.Errorf("expected hits=1 misses=2, got hits=%d misses=%d", info.Hits, info.Misses)
	}
}
