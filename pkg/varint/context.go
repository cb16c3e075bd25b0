package varint

import (
	"context"
	"io"
	"sync"

	"github.com/cockroachdb/errors"
)

// ErrClosed is returned by AsyncReader and AsyncWriter after Close.
var ErrClosed = errors.New("varint: stream closed")

// ContextByteReader is a byte source whose reads can be abandoned by
// cancelling ctx.
type ContextByteReader interface {
	ReadByteContext(ctx context.Context) (byte, error)
}

// ContextWriter is a byte sink whose writes can be abandoned by
// cancelling ctx.
type ContextWriter interface {
	WriteContext(ctx context.Context, p []byte) (int, error)
}

// ReadContext reads one value of type T from r. Outcomes match Read.
// If ctx is done before the value terminates, ReadContext returns
// ctx.Err() and no value; bytes of the abandoned value that were
// already consumed are lost.
func ReadContext[T Integer](ctx context.Context, r ContextByteReader) (T, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return readFrom[T](func() (byte, error) {
		return r.ReadByteContext(ctx)
	})
}

// WriteContext encodes v and hands it to w in a single call.
func WriteContext[T Integer](ctx context.Context, w ContextWriter, v T) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var buf [10]byte
	n := Put(buf[:], v)
	return w.WriteContext(ctx, buf[:n])
}

// DefaultChunkSize is the read size used by AsyncReader.
const DefaultChunkSize = 4096

type chunk struct {
	p   []byte
	err error
}

// AsyncReader adapts a blocking io.Reader into a ContextByteReader. A
// background goroutine reads from the underlying reader; waiting for
// the next byte can be abandoned through the context, and bytes not yet
// consumed stay buffered for the next call.
//
// Close stops the goroutine once its current Read returns. Closing the
// underlying reader is the caller's job.
type AsyncReader struct {
	chunks chan chunk
	quit   chan struct{}
	once   sync.Once

	buf []byte
	err error
}

// NewAsyncReader starts reading r in the background.
func NewAsyncReader(r io.Reader) *AsyncReader {
	return NewAsyncReaderSize(r, DefaultChunkSize)
}

// NewAsyncReaderSize is like NewAsyncReader with a custom chunk size.
func NewAsyncReaderSize(r io.Reader, size int) *AsyncReader {
	if size <= 0 {
		size = DefaultChunkSize
	}
	a := &AsyncReader{
		chunks: make(chan chunk),
		quit:   make(chan struct{}),
	}
	go a.pump(r, size)
	return a
}

func (a *AsyncReader) pump(r io.Reader, size int) {
	for {
		p := make([]byte, size)
		n, err := r.Read(p)
		if n > 0 {
			select {
			case a.chunks <- chunk{p: p[:n]}:
			case <-a.quit:
				return
			}
		}
		if err != nil {
			select {
			case a.chunks <- chunk{err: err}:
			case <-a.quit:
			}
			return
		}
	}
}

// ReadByteContext returns the next byte, waiting for the background
// reader if none is buffered.
func (a *AsyncReader) ReadByteContext(ctx context.Context) (byte, error) {
	for len(a.buf) == 0 {
		if a.err != nil {
			return 0, a.err
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-a.quit:
			return 0, ErrClosed
		case c := <-a.chunks:
			a.buf, a.err = c.p, c.err
		}
	}
	b := a.buf[0]
	a.buf = a.buf[1:]
	return b, nil
}

// Close stops the background reader.
func (a *AsyncReader) Close() error {
	a.once.Do(func() { close(a.quit) })
	return nil
}

type writeRequest struct {
	p    []byte
	resp chan writeResult
}

type writeResult struct {
	n   int
	err error
}

// AsyncWriter adapts a blocking io.Writer into a ContextWriter. Writes
// run on a single goroutine in submission order.
//
// A write abandoned through its context after it was handed over still
// completes in the background; only writes that were never handed over
// are dropped.
type AsyncWriter struct {
	reqs chan writeRequest
	quit chan struct{}
	once sync.Once
}

// NewAsyncWriter starts a writer goroutine for w.
func NewAsyncWriter(w io.Writer) *AsyncWriter {
	a := &AsyncWriter{
		reqs: make(chan writeRequest),
		quit: make(chan struct{}),
	}
	go a.loop(w)
	return a
}

func (a *AsyncWriter) loop(w io.Writer) {
	for {
		select {
		case req := <-a.reqs:
			n, err := w.Write(req.p)
			req.resp <- writeResult{n: n, err: err}
		case <-a.quit:
			return
		}
	}
}

// WriteContext writes p to the underlying writer. p is copied before
// it is handed over.
func (a *AsyncWriter) WriteContext(ctx context.Context, p []byte) (int, error) {
	req := writeRequest{
		p:    append([]byte(nil), p...),
		resp: make(chan writeResult, 1),
	}
	select {
	case a.reqs <- req:
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-a.quit:
		return 0, ErrClosed
	}
	select {
	case res := <-req.resp:
		return res.n, res.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Close stops the writer goroutine after any write in progress.
func (a *AsyncWriter) Close() error {
	a.once.Do(func() { close(a.quit) })
	return nil
}
