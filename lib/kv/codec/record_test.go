package codec

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeReadRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
	}{
		{"plain", Record{Key: "hello", Value: []byte("world")}},
		{"with expiry", Record{Key: "session", Value: []byte("token"), ExpiresAt: time.Now().Add(time.Hour).UnixNano()}},
		{"empty value", Record{Key: "tombstone", Value: []byte{}}},
		{"nil value", Record{Key: "nil", Value: nil}},
		{"binary value", Record{Key: "blob", Value: []byte{0x00, 0xA7, 0xFF, 0x00}}},
		{"unicode key", Record{Key: "schlüssel-ключ", Value: []byte("v")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(bytes.NewReader(Encode(tt.rec)))
			require.NoError(t, err)
			assert.Equal(t, tt.rec.Key, got.Key)
			assert.Equal(t, tt.rec.ExpiresAt, got.ExpiresAt)
			if len(tt.rec.Value) == 0 {
				assert.Empty(t, got.Value)
			} else {
				assert.Equal(t, tt.rec.Value, got.Value)
			}
		})
	}
}

func TestReadStreamOfRecords(t *testing.T) {
	recs := []Record{
		{Key: "a", Value: []byte("1")},
		{Key: "b", Value: []byte("2"), ExpiresAt: 42},
		{Key: "a", Value: []byte("3")}, // superseding record for the same key
	}

	// concatenate with no separators
	var buf bytes.Buffer
	for _, r := range recs {
		buf.Write(Encode(r))
	}

	var got []Record
	for {
		r, err := Read(&buf)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, r)
	}
	require.Len(t, got, len(recs))
	for i := range recs {
		assert.Equal(t, recs[i].Key, got[i].Key)
		assert.Equal(t, recs[i].Value, got[i].Value)
		assert.Equal(t, recs[i].ExpiresAt, got[i].ExpiresAt)
	}
}

func TestReadEmptyStream(t *testing.T) {
	_, err := Read(bytes.NewReader(nil))
	assert.Equal(t, io.EOF, err)
}

func TestReadTruncatedRecord(t *testing.T) {
	enc := Encode(Record{Key: "key", Value: []byte("value")})

	// every proper prefix except the empty one must be reported as corruption
	for cut := 1; cut < len(enc); cut++ {
		_, err := Read(bytes.NewReader(enc[:cut]))
		require.Error(t, err, "prefix of %d bytes", cut)
		assert.True(t, errors.Is(err, ErrCorruptRecord), "prefix of %d bytes: got %v", cut, err)
	}
}

func TestReadBadMagic(t *testing.T) {
	enc := Encode(Record{Key: "key", Value: []byte("value")})
	enc[0] = 0x00

	_, err := Read(bytes.NewReader(enc))
	assert.True(t, errors.Is(err, ErrCorruptRecord))
}

func TestReadChecksumMismatch(t *testing.T) {
	enc := Encode(Record{Key: "key", Value: []byte("value")})
	enc[len(enc)-1] ^= 0xFF // flip a bit in the value

	_, err := Read(bytes.NewReader(enc))
	assert.True(t, errors.Is(err, ErrCorruptRecord))
}

func TestCorruptTailAfterValidRecord(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(Encode(Record{Key: "good", Value: []byte("record")}))
	buf.Write([]byte{0xDE, 0xAD}) // garbage tail, e.g. a torn append

	first, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, "good", first.Key)

	_, err = Read(&buf)
	assert.True(t, errors.Is(err, ErrCorruptRecord))
}
