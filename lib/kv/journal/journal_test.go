package journal

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/quickkv/quickkv/lib/kv/codec"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "test.qkv"))
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestAppendAndScan(t *testing.T) {
	j := openTestJournal(t)

	want := []codec.Record{
		{Key: "a", Value: []byte("1")},
		{Key: "b", Value: []byte("2"), ExpiresAt: 99},
		{Key: "a", Value: []byte("3")},
	}
	for _, rec := range want {
		if err := j.Append(rec); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	got, err := j.Snapshot()
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Key != want[i].Key || !bytes.Equal(got[i].Value, want[i].Value) || got[i].ExpiresAt != want[i].ExpiresAt {
			t.Errorf("record %d mismatch: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRewriteReplacesContents(t *testing.T) {
	j := openTestJournal(t)

	for i := 0; i < 5; i++ {
		if err := j.Append(codec.Record{Key: "old", Value: []byte("v")}); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	if err := j.Rewrite([]codec.Record{{Key: "only", Value: []byte("survivor")}}); err != nil {
		t.Fatalf("rewrite failed: %v", err)
	}

	got, err := j.Snapshot()
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly one record after rewrite, got %d", len(got))
	}
	if got[0].Key != "only" {
		t.Errorf("expected key %q, got %q", "only", got[0].Key)
	}
}

func TestTruncateEmptiesLog(t *testing.T) {
	j := openTestJournal(t)

	if err := j.Append(codec.Record{Key: "k", Value: []byte("v")}); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := j.Truncate(); err != nil {
		t.Fatalf("truncate failed: %v", err)
	}

	got, err := j.Snapshot()
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty log after truncate, got %d records", len(got))
	}

	info, err := os.Stat(j.Path())
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("expected zero-length file, got %d bytes", info.Size())
	}
}

func TestScanSurfacesCorruption(t *testing.T) {
	j := openTestJournal(t)

	if err := j.Append(codec.Record{Key: "good", Value: []byte("v")}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	// simulate a torn append at the tail of the file
	f, err := os.OpenFile(j.Path(), os.O_APPEND|os.O_WRONLY, 0666)
	if err != nil {
		t.Fatalf("failed to open file: %v", err)
	}
	if _, err := f.Write([]byte{0xBA, 0xD0}); err != nil {
		t.Fatalf("failed to write garbage: %v", err)
	}
	_ = f.Close()

	var seen int
	err = j.Scan(func(codec.Record) error {
		seen++
		return nil
	})
	if !errors.Is(err, codec.ErrCorruptRecord) {
		t.Fatalf("expected ErrCorruptRecord, got %v", err)
	}
	if seen != 1 {
		t.Errorf("expected the valid leading record to be delivered, saw %d", seen)
	}
}

func TestScanEmptyFile(t *testing.T) {
	j := openTestJournal(t)

	err := j.Scan(func(codec.Record) error {
		t.Fatal("callback must not be invoked for an empty log")
		return nil
	})
	if err != nil {
		t.Fatalf("scan of empty log failed: %v", err)
	}
}

func TestScanCallbackErrorAborts(t *testing.T) {
	j := openTestJournal(t)

	for i := 0; i < 3; i++ {
		if err := j.Append(codec.Record{Key: "k", Value: []byte("v")}); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	sentinel := errors.New("stop")
	var seen int
	err := j.Scan(func(codec.Record) error {
		seen++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if seen != 1 {
		t.Errorf("expected scan to stop after first callback, saw %d", seen)
	}
}
