// Package response frames HTTP/1.1 responses onto a connection.
package response

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

var (
	ErrHeaderWritten = errors.New("response: header already written")
	ErrNoHeader      = errors.New("response: body written before header")
	ErrBodyOverflow  = errors.New("response: body exceeds Content-Length")
	ErrBodyShort     = errors.New("response: body shorter than Content-Length")
)

// Writer writes exactly one response: a status line, Content-Type,
// Content-Length and Connection: close, then a body of the declared length.
type Writer struct {
	writer    *bufio.Writer
	status    int
	length    int64
	written   int64
	committed bool
}

func New(w io.Writer) *Writer {

	return &Writer{writer: bufio.NewWriter(w)}
}

// WriteHeader writes the status line and headers. An empty contentType omits the
// Content-Type header.
func (w *Writer) WriteHeader(status int, contentType string, length int64) error {

	if w.committed {
		return ErrHeaderWritten
	}
	w.committed = true
	w.status = status
	w.length = length

	head := "HTTP/1.1 " + strconv.Itoa(status) + " " + http.StatusText(status) + "\r\n"
	if contentType != "" {
		head += "Content-Type: " + contentType + "\r\n"
	}
	head += "Content-Length: " + strconv.FormatInt(length, 10) + "\r\n" +
		"Connection: close\r\n" +
		"\r\n"

	_, err := w.writer.WriteString(head)
	return err
}

// Write appends body bytes. Writing past the declared Content-Length fails
// without writing anything.
func (w *Writer) Write(p []byte) (int, error) {

	if !w.committed {
		return 0, ErrNoHeader
	}
	if w.written+int64(len(p)) > w.length {
		return 0, ErrBodyOverflow
	}

	n, err := w.writer.Write(p)
	w.written += int64(n)
	return n, err
}

// ReadFrom copies at most the remaining declared length from r.
func (w *Writer) ReadFrom(r io.Reader) (int64, error) {

	if !w.committed {
		return 0, ErrNoHeader
	}

	n, err := io.Copy(w.writer, io.LimitReader(r, w.length-w.written))
	w.written += n
	if err == nil && w.written < w.length {
		err = fmt.Errorf("%w: %d of %d bytes", ErrBodyShort, w.written, w.length)
	}

	return n, err
}

// Send writes a complete response and flushes it.
func (w *Writer) Send(status int, contentType string, body []byte) error {

	if err := w.WriteHeader(status, contentType, int64(len(body))); err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}

	return w.Flush()
}

// SendEmpty writes a complete response with no body.
func (w *Writer) SendEmpty(status int) error {

	return w.Send(status, "", nil)
}

func (w *Writer) Flush() error {

	return w.writer.Flush()
}

// Committed reports whether the header has been written.
func (w *Writer) Committed() bool {

	return w.committed
}

func (w *Writer) Status() int {

	return w.status
}

// Written returns the number of body bytes written so far.
func (w *Writer) Written() int64 {

	return w.written
}
