// Package bufrw implements the byte-level reader and writer the wire codec
// is built on: a writer with an optional inline scratch buffer, and a
// reader that tracks its position and can be bounded to a sub-region for
// length-delimited payloads.
//
// Encoding is always synchronous against an io.Writer; decoding is always
// against an in-memory byte slice, since every value the codec decodes
// borrows from that slice for the lifetime of the decode.
package bufrw

import "io"

// Writer is satisfied by anything that can accept raw bytes during encode.
type Writer interface {
	WriteBytes(b []byte) error
}

// BufferedWriter wraps an io.Writer with a fixed-capacity inline scratch
// buffer, avoiding a syscall/allocation per small write. Grounded on the
// exponential-growth, lazy-flush discipline of a bit-packing codec, adapted
// here to whole bytes since the wire format never needs sub-byte writes.
type BufferedWriter struct {
	w       io.Writer
	scratch []byte
	fill    int
}

// NewBufferedWriter wraps w with an inline scratch buffer of capacity n.
func NewBufferedWriter(w io.Writer, n int) *BufferedWriter {
	return &BufferedWriter{w: w, scratch: make([]byte, n)}
}

// WriteBytes appends b to the scratch buffer, flushing first if there is
// not enough room. A b that alone exceeds the scratch capacity is written
// directly to the inner writer once the scratch is flushed, bypassing the
// scratch entirely - the "MAY pass through" policy.
func (bw *BufferedWriter) WriteBytes(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	free := len(bw.scratch) - bw.fill
	if len(b) > free {
		if err := bw.Flush(); err != nil {
			return err
		}
	}
	if len(b) > len(bw.scratch) {
		_, err := bw.w.Write(b)
		return err
	}
	bw.fill += copy(bw.scratch[bw.fill:], b)
	return nil
}

// Flush writes any buffered bytes to the inner writer and resets the
// scratch buffer.
func (bw *BufferedWriter) Flush() error {
	if bw.fill == 0 {
		return nil
	}
	_, err := bw.w.Write(bw.scratch[:bw.fill])
	bw.fill = 0
	return err
}

// Finish flushes the scratch buffer. It must be called before the
// BufferedWriter is discarded; an implementation that drops it unflushed
// silently loses buffered bytes, which is a usage error this type does not
// detect.
func (bw *BufferedWriter) Finish() error {
	return bw.Flush()
}

// directWriter adapts a plain io.Writer to Writer without any buffering,
// for callers that already have a buffered sink (bytes.Buffer and similar).
type directWriter struct{ w io.Writer }

// NewWriter wraps w as a Writer with no inline buffering.
func NewWriter(w io.Writer) Writer {
	return directWriter{w: w}
}

func (d directWriter) WriteBytes(b []byte) error {
	_, err := d.w.Write(b)
	return err
}
