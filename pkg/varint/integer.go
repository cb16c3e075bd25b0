package varint

import (
	"math/bits"
	"unsafe"
)

// Unsigned is the set of unsigned integer types that can be encoded.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Signed is the set of signed integer types that can be encoded.
// Values are ZigZag-mapped before encoding.
type Signed interface {
	~int8 | ~int16 | ~int32 | ~int64
}

// Integer is every type the codec supports.
type Integer interface {
	Unsigned | Signed
}

// width reports the bit width of T and whether T is signed.
func width[T Integer]() (uint, bool) {
	var zero T
	return uint(unsafe.Sizeof(zero)) * 8, ^zero < 0
}

// maxSizeBits is the longest encoding of a value of the given width.
func maxSizeBits(w uint) int {
	return int(w+6) / 7
}

func mask(w uint) uint64 {
	if w >= 64 {
		return ^uint64(0)
	}
	return 1<<w - 1
}

// MaxSize returns the maximum number of bytes an encoded T can occupy.
func MaxSize[T Integer]() int {
	w, _ := width[T]()
	return maxSizeBits(w)
}

// RequiredSpace returns the number of bytes Encode produces for v.
func RequiredSpace[T Integer](v T) int {
	return uvarintLen(unsignedForm(v))
}

func uvarintLen(u uint64) int {
	n := (bits.Len64(u) + 6) / 7
	if n == 0 {
		return 1
	}
	return n
}

// unsignedForm returns the value that is written on the wire for v:
// v itself for unsigned types, the ZigZag mapping for signed ones.
func unsignedForm[T Integer](v T) uint64 {
	w, signed := width[T]()
	if !signed {
		return uint64(v)
	}
	x := int64(v)
	return uint64((x<<1)^(x>>63)) & mask(w)
}

// fromUnsignedForm is the inverse of unsignedForm. u must fit the width
// of T.
func fromUnsignedForm[T Integer](u uint64) T {
	_, signed := width[T]()
	if !signed {
		return T(u)
	}
	return T(int64(u>>1) ^ -int64(u&1))
}
