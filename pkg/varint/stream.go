package varint

import (
	"io"
)

// Read reads one value of type T from r.
//
// Read issues one read call per byte and never reads past the
// terminating byte. If r implements io.ByteReader it is used directly.
// The error is io.EOF only if no bytes were read; if r ends after some
// but not all bytes of the value, Read returns io.ErrUnexpectedEOF.
// An encoding that does not fit T fails with ErrOverflow as soon as the
// offending byte is seen. Other errors from r are returned unchanged.
func Read[T Integer](r io.Reader) (T, error) {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = &singleByteReader{r: r}
	}
	return readFrom[T](br.ReadByte)
}

// Write encodes v and writes it to w in a single Write call. It returns
// the number of bytes written; errors from w are returned unchanged.
func Write[T Integer](w io.Writer, v T) (int, error) {
	var buf [10]byte
	n := Put(buf[:], v)
	return w.Write(buf[:n])
}

// readFrom drives the decode state machine with next until the value
// terminates or fails.
func readFrom[T Integer](next func() (byte, error)) (T, error) {
	w, signed := width[T]()

	var s state
	for {
		b, err := next()
		if err != nil {
			if err == io.EOF && s.n > 0 {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		s = step(s, b, w)
		switch s.phase {
		case done:
			return fromUnsignedForm[T](s.value), nil
		case overflowed:
			return 0, overflowError(w, signed)
		}
	}
}

// singleByteReader reads one byte per call from an io.Reader.
type singleByteReader struct {
	r   io.Reader
	buf [1]byte
}

func (s *singleByteReader) ReadByte() (byte, error) {
	for {
		n, err := s.r.Read(s.buf[:])
		if n == 1 {
			return s.buf[0], nil
		}
		if err != nil {
			return 0, err
		}
		// A zero-byte read without an error is a no-op; retry.
	}
}
