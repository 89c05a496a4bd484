// Package codec implements the bespoke binary codec for artifact
// persistence: a discriminated-union prefix byte for sum
// types, length-prefixed sequences for collections, decode(encode(x)) = x,
// with corruption surfaced as a single typed error. A Writer's bytes
// depend only on the sequence of calls made on it; the encoders of
// map-valued types (in artifact, builder and compiler) write entries in Go
// map iteration order, so two encodings of an equal value are not
// guaranteed to be byte-identical.
package codec

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// CorruptCacheError reports a decode failure: an unknown tag byte or a
// truncated stream. Its remedy is always the same: delete the
// offending cache file and rebuild.
type CorruptCacheError struct {
	Path  string
	Cause error
}

func (e *CorruptCacheError) Error() string {
	msg := "corrupt cache"
	if e.Path != "" {
		msg += " at " + e.Path
	}
	msg += ": " + e.Cause.Error() + " — delete it and rebuild"
	return msg
}

func (e *CorruptCacheError) Unwrap() error { return e.Cause }

// Writer accumulates an encoded value.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated encoded bytes.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Tag writes a single discriminator byte for a sum type.
func (w *Writer) Tag(b byte) { w.buf.WriteByte(b) }

// Uint64 writes a fixed-width unsigned integer.
func (w *Writer) Uint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

// Uint32 writes a fixed-width unsigned integer, used as a length prefix.
func (w *Writer) Uint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

// Bool writes a single byte: 1 for true, 0 for false.
func (w *Writer) Bool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

// WriteBytes writes a length-prefixed byte slice.
func (w *Writer) WriteBytes(b []byte) {
	w.Uint32(uint32(len(b)))
	w.buf.Write(b)
}

// String writes a length-prefixed UTF-8 string.
func (w *Writer) String(s string) { w.WriteBytes([]byte(s)) }

// Len writes a length prefix for a following sequence of Len() elements.
func (w *Writer) Len(n int) { w.Uint32(uint32(n)) }

// Reader consumes an encoded value, tracking corruption as a single
// sticky error so call sites can chain reads without checking every one.
type Reader struct {
	r   *bytes.Reader
	err error
}

// NewReader wraps raw encoded bytes for decoding.
func NewReader(b []byte) *Reader { return &Reader{r: bytes.NewReader(b)} }

// Err returns the first error encountered during decoding, if any.
func (r *Reader) Err() error { return r.err }

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Tag reads a single discriminator byte; returns 0 if the stream already
// failed or is exhausted.
func (r *Reader) Tag() byte {
	if r.err != nil {
		return 0
	}
	b, err := r.r.ReadByte()
	if err != nil {
		r.fail(errors.Wrap(io.ErrUnexpectedEOF, "reading tag byte"))
		return 0
	}
	return b
}

func (r *Reader) readFixed(n int) []byte {
	if r.err != nil {
		return nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		r.fail(errors.Wrapf(io.ErrUnexpectedEOF, "reading %d bytes", n))
		return nil
	}
	return b
}

// Uint64 reads a fixed-width unsigned integer.
func (r *Reader) Uint64() uint64 {
	b := r.readFixed(8)
	if r.err != nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

// Uint32 reads a fixed-width unsigned integer.
func (r *Reader) Uint32() uint32 {
	b := r.readFixed(4)
	if r.err != nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// Bool reads a single boolean byte.
func (r *Reader) Bool() bool {
	b := r.readFixed(1)
	if r.err != nil {
		return false
	}
	return b[0] != 0
}

// ReadBytes reads a length-prefixed byte slice.
func (r *Reader) ReadBytes() []byte {
	n := r.Uint32()
	if r.err != nil {
		return nil
	}
	const maxSane = 1 << 30
	if n > maxSane {
		r.fail(errors.Errorf("implausible length prefix %d", n))
		return nil
	}
	return r.readFixed(int(n))
}

// String reads a length-prefixed UTF-8 string.
func (r *Reader) String() string {
	b := r.ReadBytes()
	if r.err != nil {
		return ""
	}
	return string(b)
}

// Len reads a sequence length prefix, guarding against corrupt streams that
// would otherwise make callers try to allocate or loop an absurd number of
// times.
func (r *Reader) Len() int {
	n := r.Uint32()
	if r.err != nil {
		return 0
	}
	const maxSane = 1 << 24
	if n > maxSane {
		r.fail(errors.Errorf("implausible sequence length %d", n))
		return 0
	}
	return int(n)
}

// UnexpectedTag builds the standard error for an unrecognized discriminator
// byte.
func UnexpectedTag(b byte) error {
	return errors.Errorf("unknown tag byte 0x%02x", b)
}
