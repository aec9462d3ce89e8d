package bufrw

import (
	"bytes"
	"testing"
)

func TestBufferedWriterFlushesOnOverflow(t *testing.T) {
	var out bytes.Buffer
	bw := NewBufferedWriter(&out, 4)

	if err := bw.WriteBytes([]byte{1, 2}); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no flush yet, out.Len() = %d", out.Len())
	}
	if err := bw.WriteBytes([]byte{3, 4, 5}); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	// The first two bytes should have been flushed to make room.
	if out.Len() != 2 {
		t.Fatalf("expected 2 bytes flushed, got %d", out.Len())
	}
	if err := bw.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	want := []byte{1, 2, 3, 4, 5}
	if !bytes.Equal(out.Bytes(), want) {
		t.Fatalf("out = %v, want %v", out.Bytes(), want)
	}
}

func TestBufferedWriterOversizedPassesThrough(t *testing.T) {
	var out bytes.Buffer
	bw := NewBufferedWriter(&out, 2)
	big := []byte{1, 2, 3, 4, 5, 6}
	if err := bw.WriteBytes(big); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	if err := bw.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if !bytes.Equal(out.Bytes(), big) {
		t.Fatalf("out = %v, want %v", out.Bytes(), big)
	}
}

func TestReaderPosAndLimit(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	r := NewReader(data)

	if r.Pos() != 0 {
		t.Fatalf("initial Pos() = %d, want 0", r.Pos())
	}
	b, err := r.ReadBytes(3)
	if err != nil || !bytes.Equal(b, []byte{1, 2, 3}) {
		t.Fatalf("ReadBytes(3) = %v, %v", b, err)
	}
	if r.Pos() != 3 {
		t.Fatalf("Pos() after ReadBytes(3) = %d, want 3", r.Pos())
	}

	child, err := r.Limit(3)
	if err != nil {
		t.Fatalf("Limit: %v", err)
	}
	// The parent must advance past the limited region immediately.
	if r.Pos() != 6 {
		t.Fatalf("parent Pos() after Limit(3) = %d, want 6", r.Pos())
	}
	cb, err := child.ReadBytes(2)
	if err != nil || !bytes.Equal(cb, []byte{4, 5}) {
		t.Fatalf("child.ReadBytes(2) = %v, %v", cb, err)
	}
	// Child never reads its third byte; parent position is unaffected.
	if r.Pos() != 6 {
		t.Fatalf("parent Pos() after partial child read = %d, want 6", r.Pos())
	}

	rest, err := r.ReadBytes(2)
	if err != nil || !bytes.Equal(rest, []byte{7, 8}) {
		t.Fatalf("ReadBytes(2) = %v, %v", rest, err)
	}
}

func TestReaderTruncated(t *testing.T) {
	r := NewReader([]byte{1, 2})
	if _, err := r.ReadBytes(3); err != Truncated {
		t.Fatalf("ReadBytes(3) on 2-byte buffer = %v, want Truncated", err)
	}
	if _, err := r.Limit(3); err != Truncated {
		t.Fatalf("Limit(3) on 2-byte buffer = %v, want Truncated", err)
	}
}

func TestReaderSkipAndUnread(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4, 5})
	if err := r.Skip(2); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if r.Pos() != 2 {
		t.Fatalf("Pos() after Skip(2) = %d, want 2", r.Pos())
	}
	b, _ := r.ReadBytes(3)
	if !bytes.Equal(b, []byte{3, 4, 5}) {
		t.Fatalf("ReadBytes(3) = %v", b)
	}
	r.Unread(2)
	if r.Pos() != 3 {
		t.Fatalf("Pos() after Unread(2) = %d, want 3", r.Pos())
	}
}
