package varint

import (
	"io"
)

// Decode decodes one value of type T from the start of buf and returns
// it with the number of bytes consumed. Bytes after the terminating
// byte are not inspected.
//
// Decode fails with ErrOverflow if the encoding does not fit T, and
// with io.ErrUnexpectedEOF if buf ends before the terminating byte.
// On failure the returned count is 0.
func Decode[T Integer](buf []byte) (T, int, error) {
	w, signed := width[T]()

	var s state
	for _, b := range buf {
		s = step(s, b, w)
		switch s.phase {
		case done:
			return fromUnsignedForm[T](s.value), s.n, nil
		case overflowed:
			return 0, 0, overflowError(w, signed)
		}
	}
	return 0, 0, io.ErrUnexpectedEOF
}
