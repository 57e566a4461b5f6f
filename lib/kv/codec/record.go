package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

// Constants for the on-disk record format
const (
	// magicByte marks the start of a valid record. It lets a decoder detect
	// immediately that it lost synchronization with the stream.
	magicByte = 0xA7

	// preludeSize is the fixed part of every record:
	// 1 byte (Magic) + 1 byte (Flags) + 4 bytes (CRC32) + 4 bytes (KeyLen) + 4 bytes (ValueLen) = 14 bytes.
	preludeSize = 14

	// expirySize is the size of the optional expiry timestamp field.
	expirySize = 8
)

// Bit flags to indicate which optional fields are present
const (
	hasExpiry byte = 1 << 0
)

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

// ErrCorruptRecord indicates malformed bytes mid-stream: a truncated record,
// a bad magic byte or a checksum mismatch. It is a hard error that aborts
// the scan, in contrast to a clean io.EOF at a record boundary.
var ErrCorruptRecord = errors.New("corrupt record")

// --------------------------------------------------------------------------
// Record Type
// --------------------------------------------------------------------------

// Record is the durable encoding unit: one key, its value and an optional
// absolute expiry timestamp in unix nanoseconds (0 = never expires).
type Record struct {
	Key       string
	Value     []byte
	ExpiresAt int64
}

// --------------------------------------------------------------------------
// Encoding
// --------------------------------------------------------------------------

// Encode serializes a record to its self-framing binary form.
//
// Record Format: [Magic(1)][Flags(1)][CRC(4)][KeyLen(4)][ValueLen(4)][ExpiresAt(8)?][Key][Value]
//
// The CRC32 (IEEE) covers everything after the CRC field. Records are
// concatenated with no separators; the lengths in the prelude make each
// record self-delimiting.
func Encode(r Record) []byte {
	keyLen := len(r.Key)
	valueLen := len(r.Value)

	totalSize := preludeSize + keyLen + valueLen
	var flags byte
	if r.ExpiresAt != 0 {
		flags |= hasExpiry
		totalSize += expirySize
	}

	buf := make([]byte, totalSize)
	buf[0] = magicByte
	buf[1] = flags
	binary.BigEndian.PutUint32(buf[6:10], uint32(keyLen))
	binary.BigEndian.PutUint32(buf[10:14], uint32(valueLen))

	pos := preludeSize
	if r.ExpiresAt != 0 {
		binary.BigEndian.PutUint64(buf[pos:pos+expirySize], uint64(r.ExpiresAt))
		pos += expirySize
	}
	copy(buf[pos:pos+keyLen], r.Key)
	pos += keyLen
	copy(buf[pos:pos+valueLen], r.Value)

	// checksum covers everything after the CRC field
	checksum := crc32.ChecksumIEEE(buf[6:])
	binary.BigEndian.PutUint32(buf[2:6], checksum)

	return buf
}

// --------------------------------------------------------------------------
// Decoding
// --------------------------------------------------------------------------

// Read decodes the next record from the reader.
//
// A clean end of stream (EOF exactly at a record boundary) is reported as
// io.EOF. Anything else that prevents decoding (partial record, bad magic,
// checksum mismatch) is reported as an error wrapping ErrCorruptRecord and
// must abort the scan: skipping over it could silently drop user data.
func Read(r io.Reader) (Record, error) {
	prelude := make([]byte, preludeSize)

	if _, err := io.ReadFull(r, prelude); err != nil {
		// EOF before the first byte of a record is the normal termination
		if err == io.EOF {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("%w: truncated prelude: %v", ErrCorruptRecord, err)
	}

	if prelude[0] != magicByte {
		return Record{}, fmt.Errorf("%w: invalid magic byte 0x%02x", ErrCorruptRecord, prelude[0])
	}

	flags := prelude[1]
	expectedCRC := binary.BigEndian.Uint32(prelude[2:6])
	keyLen := binary.BigEndian.Uint32(prelude[6:10])
	valueLen := binary.BigEndian.Uint32(prelude[10:14])

	bodyLen := int(keyLen) + int(valueLen)
	if flags&hasExpiry != 0 {
		bodyLen += expirySize
	}

	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		// even a plain EOF is corruption here, the prelude promised more bytes
		return Record{}, fmt.Errorf("%w: truncated body: %v", ErrCorruptRecord, err)
	}

	// verify checksum over length fields + body
	crc := crc32.NewIEEE()
	crc.Write(prelude[6:14])
	crc.Write(body)
	if crc.Sum32() != expectedCRC {
		return Record{}, fmt.Errorf("%w: crc32 checksum mismatch", ErrCorruptRecord)
	}

	var rec Record
	pos := 0
	if flags&hasExpiry != 0 {
		rec.ExpiresAt = int64(binary.BigEndian.Uint64(body[pos : pos+expirySize]))
		pos += expirySize
	}
	rec.Key = string(body[pos : pos+int(keyLen)])
	pos += int(keyLen)
	rec.Value = body[pos : pos+int(valueLen)]

	return rec, nil
}
