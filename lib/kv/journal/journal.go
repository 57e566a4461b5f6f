package journal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/quickkv/quickkv/lib/kv/codec"
)

// --------------------------------------------------------------------------
// Journal Type
// --------------------------------------------------------------------------

// Journal owns the backing record log of a disk-backed engine.
//
// It keeps two independent handles on the same file: a read handle used by
// sequential scans and a write handle used by appends, rewrites and
// truncation. Each handle is guarded by its own lock because the two access
// patterns never share file offsets. The two locks do NOT make a
// scan-then-rewrite sequence atomic: callers that need that (the engine's
// update/delete paths) must hold their own serialization lock across both
// phases.
type Journal struct {
	path string

	readMu sync.Mutex // guards reader
	reader *os.File

	writeMu sync.Mutex // guards writer
	writer  *os.File
}

// Open opens (or creates) the record log at the given path.
func Open(path string) (*Journal, error) {
	writer, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal for writing: %w", err)
	}

	reader, err := os.OpenFile(path, os.O_RDONLY, 0666)
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("failed to open journal for reading: %w", err)
	}

	return &Journal{
		path:   path,
		reader: reader,
		writer: writer,
	}, nil
}

// Path returns the file path of the journal.
func (j *Journal) Path() string {
	return j.path
}

// --------------------------------------------------------------------------
// Write Side
// --------------------------------------------------------------------------

// Append encodes the record and writes it at the current end of the file.
// The write is flushed and fsynced before Append returns, so a nil error
// means the record is durable.
func (j *Journal) Append(rec codec.Record) error {
	j.writeMu.Lock()
	defer j.writeMu.Unlock()

	if _, err := j.writer.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to journal end: %w", err)
	}
	if _, err := j.writer.Write(codec.Encode(rec)); err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}
	if err := j.writer.Sync(); err != nil {
		return fmt.Errorf("failed to sync journal: %w", err)
	}
	return nil
}

// Rewrite replaces the entire log with a fresh encoding of the given record
// set. This is the sole mechanism for removing or replacing records: the log
// has no tombstones or free-space reclamation, so every update/delete pays
// the full O(total records) rewrite.
func (j *Journal) Rewrite(recs []codec.Record) error {
	j.writeMu.Lock()
	defer j.writeMu.Unlock()

	if err := j.writer.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate journal: %w", err)
	}
	if _, err := j.writer.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to journal start: %w", err)
	}

	bw := bufio.NewWriterSize(j.writer, 1024*1024) // 1 MB buffer
	for _, rec := range recs {
		if _, err := bw.Write(codec.Encode(rec)); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush journal: %w", err)
	}
	if err := j.writer.Sync(); err != nil {
		return fmt.Errorf("failed to sync journal: %w", err)
	}
	return nil
}

// Truncate empties the log (used by Purge).
func (j *Journal) Truncate() error {
	return j.Rewrite(nil)
}

// --------------------------------------------------------------------------
// Read Side
// --------------------------------------------------------------------------

// Scan reads the log from the start and invokes fn for every decoded record
// in file order. A clean end of file terminates the scan with a nil error.
// A corrupt record aborts the scan with an error wrapping
// codec.ErrCorruptRecord; it is surfaced, never skipped. An error returned
// by fn also aborts the scan.
func (j *Journal) Scan(fn func(codec.Record) error) error {
	j.readMu.Lock()
	defer j.readMu.Unlock()

	if _, err := j.reader.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to journal start: %w", err)
	}

	br := bufio.NewReaderSize(j.reader, 1024*1024) // 1 MB buffer
	for {
		rec, err := codec.Read(br)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("journal scan failed: %w", err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}

// Snapshot scans the full log into memory. It is the capture phase of the
// rewrite-based update/delete paths.
func (j *Journal) Snapshot() ([]codec.Record, error) {
	var recs []codec.Record
	err := j.Scan(func(rec codec.Record) error {
		recs = append(recs, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

// Close releases both file handles.
func (j *Journal) Close() error {
	j.readMu.Lock()
	defer j.readMu.Unlock()
	j.writeMu.Lock()
	defer j.writeMu.Unlock()

	readErr := j.reader.Close()
	writeErr := j.writer.Close()
	if writeErr != nil {
		return fmt.Errorf("failed to close journal: %w", writeErr)
	}
	if readErr != nil {
		return fmt.Errorf("failed to close journal: %w", readErr)
	}
	return nil
}
