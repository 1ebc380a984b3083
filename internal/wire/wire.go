// Package wire frames cache entries for byte-backed stores. The format is
// strict: bad magic, wrong version, short buffers, and trailing bytes are all
// corruption, so a byte store can self-heal by deleting anything that fails
// to decode.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const version byte = 1

var (
	ErrCorrupt = errors.New("queryflight: corrupt entry")
	magic4     = [...]byte{'Q', 'F', 'L', 'T'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Entry is the framed timing metadata plus the encoded payload.
// ExpiresAt zero means the entry has no expiry (never fresh).
type Entry struct {
	CreatedAt   time.Time
	LastUpdated time.Time
	ExpiresAt   time.Time
	Payload     []byte
}

// frame: magic(4) | ver(1) | created(i64 be, unix ns) | updated(i64 be) |
// expires(i64 be, 0=absent) | vlen(u32 be) | payload(vlen)
const hdr = 4 + 1 + 8 + 8 + 8 + 4

// Encode frames e. Zero timestamps encode as 0.
func Encode(e Entry) []byte {
	var buf bytes.Buffer
	buf.Grow(hdr + len(e.Payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], uint64(unixNano(e.CreatedAt)))
	buf.Write(u8[:])
	binary.BigEndian.PutUint64(u8[:], uint64(unixNano(e.LastUpdated)))
	buf.Write(u8[:])
	binary.BigEndian.PutUint64(u8[:], uint64(unixNano(e.ExpiresAt)))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(e.Payload)))
	buf.Write(u4[:])
	buf.Write(e.Payload)

	return buf.Bytes()
}

// Decode unframes b. Trailing bytes are rejected.
func Decode(b []byte) (Entry, error) {
	if len(b) < hdr || !hasMagic(b) || b[4] != version {
		return Entry{}, ErrCorrupt
	}

	off := 5
	created := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8
	updated := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8
	expires := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off { // strict: no trailing bytes
		return Entry{}, ErrCorrupt
	}

	return Entry{
		CreatedAt:   fromUnixNano(created),
		LastUpdated: fromUnixNano(updated),
		ExpiresAt:   fromUnixNano(expires),
		Payload:     b[off : off+vlen],
	}, nil
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}
