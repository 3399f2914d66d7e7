package wire

import (
	"bytes"
	"testing"
)

func TestReaderReadsBigEndian(t *testing.T) {
	buf := []byte{0x01, 0x00, 0x00, 0x00, 0x2A, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	r := NewReader(buf)

	b, err := r.ReadU8()
	if err != nil {
		t.Fatalf("ReadU8: %v", err)
	}
	if b != 0x01 {
		t.Fatalf("ReadU8 = %#x, want 0x01", b)
	}

	i32, err := r.ReadI32()
	if err != nil {
		t.Fatalf("ReadI32: %v", err)
	}
	if i32 != 42 {
		t.Fatalf("ReadI32 = %d, want 42", i32)
	}

	i64, err := r.ReadI64()
	if err != nil {
		t.Fatalf("ReadI64: %v", err)
	}
	if i64 != -1 {
		t.Fatalf("ReadI64 = %d, want -1", i64)
	}

	if r.Remaining() != 0 {
		t.Fatalf("Remaining = %d, want 0", r.Remaining())
	}
}

func TestReaderShortReadFails(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})
	if _, err := r.ReadI64(); err == nil {
		t.Fatalf("expected short-read error")
	}
}

func TestReadExactDoesNotCopy(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	r := NewReader(buf)
	s, err := r.ReadExact(3)
	if err != nil {
		t.Fatalf("ReadExact: %v", err)
	}
	buf[0] = 0xFF
	if s[0] != 0xFF {
		t.Fatalf("ReadExact returned a copy, expected an alias")
	}
}

func TestReadBytesCopies(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	r := NewReader(buf)
	s, err := r.ReadBytes(3)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	buf[0] = 0xFF
	if s[0] == 0xFF {
		t.Fatalf("ReadBytes returned an alias, expected a copy")
	}
}

func TestSliceAtBounds(t *testing.T) {
	buf := make([]byte, 10)
	if _, err := SliceAt(buf, 8, 5); err == nil {
		t.Fatalf("expected out-of-range error")
	}
	s, err := SliceAt(buf, 2, 4)
	if err != nil {
		t.Fatalf("SliceAt: %v", err)
	}
	if len(s.Bytes()) != 4 {
		t.Fatalf("Bytes() len = %d, want 4", len(s.Bytes()))
	}
}

func TestWriterRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteU8(0x02)
	w.WriteI32(42)
	w.WriteI64(-1)
	w.WriteBytes([]byte("hi"))

	r := NewReader(w.Bytes())
	b, _ := r.ReadU8()
	i32, _ := r.ReadI32()
	i64, _ := r.ReadI64()
	rest, _ := r.ReadBytes(2)

	if b != 0x02 || i32 != 42 || i64 != -1 || !bytes.Equal(rest, []byte("hi")) {
		t.Fatalf("round trip mismatch: %#x %d %d %q", b, i32, i64, rest)
	}
}
