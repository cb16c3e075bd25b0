package varint

// Put encodes v into buf and returns the number of bytes written.
// buf must have at least MaxSize[T]() bytes available.
func Put[T Integer](buf []byte, v T) int {
	u := unsignedForm(v)
	i := 0
	for u >= 0x80 {
		buf[i] = byte(u) | 0x80
		u >>= 7
		i++
	}
	buf[i] = byte(u)
	return i + 1
}

// Append appends the encoding of v to dst and returns the extended slice.
func Append[T Integer](dst []byte, v T) []byte {
	u := unsignedForm(v)
	for u >= 0x80 {
		dst = append(dst, byte(u)|0x80)
		u >>= 7
	}
	return append(dst, byte(u))
}

// Encode returns the encoding of v in a new slice.
func Encode[T Integer](v T) []byte {
	return Append(make([]byte, 0, RequiredSpace(v)), v)
}
