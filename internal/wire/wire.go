// Package wire provides a big-endian cursor over a contiguous byte buffer.
// It is the byte layer the envelope codec parses and writes on top of: every
// field width, signedness, and endianness decision the codec makes bottoms
// out in one of the reader/writer methods here.
package wire

import (
	"encoding/binary"
	"fmt"
)

// Reader reads big-endian fields from a byte slice without copying unless
// the caller asks for a copy via ReadBytes.
type Reader struct {
	b   []byte
	pos int
}

// NewReader creates a Reader over b with the initial read position set to 0.
func NewReader(b []byte) *Reader {
	return &Reader{b: b, pos: 0}
}

// Remaining reports how many unread bytes are left in the buffer.
func (r *Reader) Remaining() int {
	if r.pos >= len(r.b) {
		return 0
	}
	return len(r.b) - r.pos
}

// Pos returns the current read offset.
func (r *Reader) Pos() int {
	return r.pos
}

// ReadExact returns a slice aliasing the next n bytes and advances the
// cursor. The returned slice is not a copy; callers that need to retain it
// past further reads must copy it themselves.
func (r *Reader) ReadExact(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, fmt.Errorf("wire: short read: want %d, have %d", n, r.Remaining())
	}
	start := r.pos
	r.pos += n
	return r.b[start:r.pos], nil
}

// ReadBytes returns an owned copy of the next n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	s, err := r.ReadExact(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, s)
	return out, nil
}

// ReadU8 reads a single unsigned byte.
func (r *Reader) ReadU8() (byte, error) {
	b, err := r.ReadExact(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadI32 reads a signed 32-bit big-endian integer.
func (r *Reader) ReadI32() (int32, error) {
	b, err := r.ReadExact(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

// ReadI64 reads a signed 64-bit big-endian integer.
func (r *Reader) ReadI64() (int64, error) {
	b, err := r.ReadExact(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

// Slice is a non-owning view of a region of a larger buffer, passed to
// crypto primitives so the codec can avoid an intermediate allocation when
// handing a nested ciphertext down to a decrypt call.
type Slice struct {
	Buffer []byte
	Offset int
	Count  int
}

// Bytes returns the aliased region as a []byte. It panics if the slice's
// bounds are invalid, which would indicate a codec bug rather than bad
// input — callers must validate bounds against the buffer length before
// constructing a Slice.
func (s Slice) Bytes() []byte {
	return s.Buffer[s.Offset : s.Offset+s.Count]
}

// ReadRestAsSlice returns a non-owning Slice covering everything from the
// current position to the end of the buffer, without advancing pos past
// the end (the caller is expected to be done reading afterward).
func (r *Reader) ReadRestAsSlice() Slice {
	return Slice{Buffer: r.b, Offset: r.pos, Count: len(r.b) - r.pos}
}

// SliceAt builds a non-owning Slice over buf[offset:offset+count], failing
// if the region would run past the end of buf.
func SliceAt(buf []byte, offset, count int) (Slice, error) {
	if offset < 0 || count < 0 || offset+count > len(buf) {
		return Slice{}, fmt.Errorf("wire: slice out of range: offset=%d count=%d len=%d", offset, count, len(buf))
	}
	return Slice{Buffer: buf, Offset: offset, Count: count}, nil
}

// Writer appends big-endian fields to a growing byte buffer.
type Writer struct {
	b []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte {
	return w.b
}

// WriteU8 appends a single byte.
func (w *Writer) WriteU8(v byte) {
	w.b = append(w.b, v)
}

// WriteI32 appends a signed 32-bit big-endian integer.
func (w *Writer) WriteI32(v int32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(v))
	w.b = append(w.b, tmp[:]...)
}

// WriteI64 appends a signed 64-bit big-endian integer.
func (w *Writer) WriteI64(v int64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(v))
	w.b = append(w.b, tmp[:]...)
}

// WriteBytes appends b verbatim, with no length prefix.
func (w *Writer) WriteBytes(b []byte) {
	w.b = append(w.b, b...)
}
