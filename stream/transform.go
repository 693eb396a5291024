package stream

import (
	"errors"
	"io"

	"github.com/go-repair/jsonrepair/repair"
)

// ErrClosed is returned by Write once the Transform has been closed.
var ErrClosed = errors.New("stream: write after close")

// Transform is the streaming collaborator of spec.md §6: a caller pumps
// input chunks through Write and drains repaired output chunks through
// Read. Internally it buffers the whole input, up to windowSize bytes
// (a larger input fails with BufferExceeded), and runs a single repair pass
// over it in Close; no output is available before Close, and the repaired
// document is held in full until Read drains it.
type Transform struct {
	opts       []repair.Option
	windowSize int

	in     []byte
	out    []byte
	closed bool
	err    error
}

// NewTransform configures a Transform from the same Option type Repair
// itself accepts; WithWindowSize governs how much input this Transform may
// buffer before failing with BufferExceeded.
func NewTransform(opts ...repair.Option) *Transform {
	_, windowSize := repair.ResolveWindowOptions(opts...)
	return &Transform{opts: opts, windowSize: windowSize}
}

// Write feeds a chunk of input. It never blocks and never triggers a
// repair pass by itself; Close does that once all input has arrived.
func (t *Transform) Write(chunk []byte) (int, error) {
	if t.closed {
		return 0, ErrClosed
	}
	if t.err != nil {
		return 0, t.err
	}
	if len(t.in)+len(chunk) > t.windowSize {
		t.err = &repair.Error{
			Kind:     repair.KindBufferExceeded,
			Message:  "input exceeds configured window size",
			Position: len(t.in) + len(chunk),
		}
		return 0, t.err
	}
	t.in = append(t.in, chunk...)
	return len(chunk), nil
}

// Close signals end of input and runs the repair pass over everything
// written so far. It is safe to call more than once; later calls are a
// no-op that returns the same result as the first.
func (t *Transform) Close() error {
	if t.closed {
		return t.err
	}
	t.closed = true
	if t.err != nil {
		return t.err
	}

	repaired, err := repair.Repair(string(t.in), t.opts...)
	if err != nil {
		t.err = err
		return err
	}
	t.out = []byte(repaired)
	return nil
}

// Read drains the repaired output. It returns io.EOF once the buffered
// output is exhausted, and an error if Close has not yet been called or if
// the repair pass failed.
func (t *Transform) Read(p []byte) (int, error) {
	if !t.closed {
		return 0, errors.New("stream: Read before Close")
	}
	if t.err != nil {
		return 0, t.err
	}
	if len(t.out) == 0 {
		return 0, io.EOF
	}
	n := copy(p, t.out)
	t.out = t.out[n:]
	return n, nil
}

// Repair is the convenience entry point for whole-stream use: read r to
// end of input, feed it through a Transform, and copy the repaired result
// to w.
func Repair(r io.Reader, w io.Writer, opts ...repair.Option) error {
	t := NewTransform(opts...)
	buf := make([]byte, 32*1024)
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			if _, err := t.Write(buf[:n]); err != nil {
				return err
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return readErr
		}
	}
	if err := t.Close(); err != nil {
		return err
	}
	_, err := io.Copy(w, t)
	return err
}
