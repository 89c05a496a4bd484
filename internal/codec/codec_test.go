package codec

import (
	"strings"
	"testing"
)

func TestRoundTripPrimitives(t *testing.T) {
	w := NewWriter()
	w.Tag(7)
	w.Uint64(1<<63 + 42)
	w.Uint32(123456)
	w.Bool(true)
	w.Bool(false)
	w.String("hello, gren")
	w.Len(3)

	r := NewReader(w.Bytes())
	if tag := r.Tag(); tag != 7 {
		t.Fatalf("tag = %d, want 7", tag)
	}
	if v := r.Uint64(); v != 1<<63+42 {
		t.Fatalf("uint64 = %d", v)
	}
	if v := r.Uint32(); v != 123456 {
		t.Fatalf("uint32 = %d", v)
	}
	if b := r.Bool(); !b {
		t.Fatal("expected true")
	}
	if b := r.Bool(); b {
		t.Fatal("expected false")
	}
	if s := r.String(); s != "hello, gren" {
		t.Fatalf("string = %q", s)
	}
	if n := r.Len(); n != 3 {
		t.Fatalf("len = %d", n)
	}
	if err := r.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTruncatedStreamIsSticky(t *testing.T) {
	w := NewWriter()
	w.String("partial")
	full := w.Bytes()
	truncated := full[:len(full)-2]

	r := NewReader(truncated)
	_ = r.String()
	if r.Err() == nil {
		t.Fatal("expected an error decoding a truncated string")
	}

	// Once failed, further reads keep returning the same error rather than
	// panicking or reading garbage.
	_ = r.Uint64()
	_ = r.Tag()
	if r.Err() == nil {
		t.Fatal("expected the sticky error to persist across subsequent reads")
	}
}

func TestImplausibleLengthPrefixFails(t *testing.T) {
	w := NewWriter()
	w.Uint32(0xFFFFFFFF)
	r := NewReader(w.Bytes())
	_ = r.ReadBytes()
	if r.Err() == nil {
		t.Fatal("expected an implausible length prefix to be rejected")
	}
}

func TestCorruptCacheErrorNamesRemedy(t *testing.T) {
	err := &CorruptCacheError{Path: "/tmp/artifacts.dat", Cause: UnexpectedTag(0xFE)}
	msg := err.Error()
	if !strings.Contains(msg, "delete it and rebuild") {
		t.Fatalf("expected the message to name the remedy, got %q", msg)
	}
	if got := err.Unwrap(); got == nil {
		t.Fatal("expected Unwrap to return the cause")
	}
}
