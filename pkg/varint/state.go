package varint

// phase is the position of a decode in its state machine.
type phase uint8

const (
	accumulating phase = iota
	done
	overflowed
)

// state is the incremental decode of one value. The zero value is the
// initial state.
type state struct {
	value uint64
	n     int
	phase phase
}

// step feeds one byte into s for a target of w bits and returns the
// next state. Terminal states are returned unchanged.
func step(s state, b byte, w uint) state {
	if s.phase != accumulating {
		return s
	}

	shift := uint(s.n) * 7
	payload := uint64(b & 0x7F)
	s.n++

	switch {
	case shift >= w:
		if payload != 0 {
			s.phase = overflowed
			return s
		}
	case w-shift < 7 && payload>>(w-shift) != 0:
		s.phase = overflowed
		return s
	default:
		s.value |= payload << shift
	}

	if b < 0x80 {
		s.phase = done
		return s
	}
	// A continuation flag on the last byte the type allows can only be
	// followed by groups beyond its width.
	if s.n >= maxSizeBits(w) {
		s.phase = overflowed
	}
	return s
}
