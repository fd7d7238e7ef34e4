// Package bytereader provides a bounded, rewindable view over a connection's
// incoming bytes.
package bytereader

import (
	"errors"
	"fmt"
	"io"

	"github.com/gptankit/rawserve/algorithm"
)

var ErrNegativeCount = errors.New("bytereader: negative count")

// Reader buffers a leading region of src (at most limit bytes). The start of the
// region acts as a mark: Reset rewinds to it, Skip and ReadN move forward, and
// ReadN transparently continues into src once the buffered region is exhausted.
type Reader struct {
	src   io.Reader
	buf   []byte
	limit int
	pos   int
	eof   bool
}

// New wraps src with a working buffer capped at limit bytes.
func New(src io.Reader, limit int) *Reader {

	return &Reader{
		src:   src,
		buf:   make([]byte, 0, limit),
		limit: limit,
	}
}

// Fill reads from src until delim appears in the buffered region, the region
// holds limit bytes, or src is exhausted. Hitting the limit or EOF without
// seeing delim is not an error; callers check with Index.
func (r *Reader) Fill(delim []byte) error {

	for !r.eof && len(r.buf) < r.limit {
		if algorithm.IndexOf(r.buf, delim, 0, len(r.buf)) >= 0 {
			return nil
		}

		n, err := r.src.Read(r.buf[len(r.buf):r.limit])
		r.buf = r.buf[:len(r.buf)+n]
		if err != nil {
			if err == io.EOF {
				r.eof = true
				return nil
			}
			return err
		}
	}

	return nil
}

// Buffered returns the buffered region. The slice is only valid until the next Fill.
func (r *Reader) Buffered() []byte {

	return r.buf
}

// Index scans the buffered region for delim starting at start.
func (r *Reader) Index(delim []byte, start int) int {

	return algorithm.IndexOf(r.buf, delim, start, len(r.buf))
}

// Reset rewinds to the start of the buffered region.
func (r *Reader) Reset() {

	r.pos = 0
}

// Skip discards n bytes.
func (r *Reader) Skip(n int) error {

	_, err := r.ReadN(n)
	return err
}

// ReadN returns exactly n bytes. If src ends first the error wraps io.ErrUnexpectedEOF.
func (r *Reader) ReadN(n int) ([]byte, error) {

	if n < 0 {
		return nil, ErrNegativeCount
	}

	out := make([]byte, n)
	copied := copy(out, r.buf[r.pos:])
	r.pos += copied

	if copied == n {
		return out, nil
	}

	if r.eof {
		return out[:copied], fmt.Errorf("bytereader: wanted %d bytes, got %d: %w", n, copied, io.ErrUnexpectedEOF)
	}

	got, err := io.ReadFull(r.src, out[copied:])
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return out[:copied+got], fmt.Errorf("bytereader: wanted %d bytes, got %d: %w", n, copied+got, err)
	}

	return out, nil
}
