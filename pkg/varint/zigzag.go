package varint

// ZigZag maps x onto the unsigned domain of the same width so that
// values near zero, positive or negative, map to small numbers:
// 0 -> 0, -1 -> 1, 1 -> 2, -2 -> 3. The mapping wraps at the width
// boundary, so the minimum value of T maps to the maximum unsigned
// value of that width.
func ZigZag[T Signed](x T) uint64 {
	return unsignedForm(x)
}

// UnZigZag is the inverse of ZigZag. Bits of u above the width of T are
// ignored.
func UnZigZag[T Signed](u uint64) T {
	w, _ := width[T]()
	return fromUnsignedForm[T](u & mask(w))
}
