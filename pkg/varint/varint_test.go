package varint

import (
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip[T Integer](t *testing.T, v T) {
	t.Helper()
	enc := Encode(v)
	got, n, err := Decode[T](enc)
	require.NoError(t, err, "value %v", v)
	require.Equal(t, v, got)
	require.Equal(t, len(enc), n)
	require.Equal(t, RequiredSpace(v), n)
	require.LessOrEqual(t, n, MaxSize[T]())
}

func TestMaxSize(t *testing.T) {
	assert.Equal(t, 10, MaxSize[uint64]())
	assert.Equal(t, 5, MaxSize[uint32]())
	assert.Equal(t, 3, MaxSize[uint16]())
	assert.Equal(t, 2, MaxSize[uint8]())
	assert.Equal(t, 10, MaxSize[int64]())
	assert.Equal(t, 5, MaxSize[int32]())
	assert.Equal(t, 3, MaxSize[int16]())
	assert.Equal(t, 2, MaxSize[int8]())
}

func TestRequiredSpace(t *testing.T) {
	tests := []struct {
		value uint32
		want  int
	}{
		{0, 1},
		{1, 1},
		{127, 1},
		{128, 2},
		{16383, 2},
		{16384, 3},
		{2097151, 3},
		{2097152, 4},
		{math.MaxUint32, 5},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, RequiredSpace(tc.value), "RequiredSpace(%d)", tc.value)
		assert.Len(t, Encode(tc.value), tc.want)
	}

	assert.Equal(t, 10, RequiredSpace(uint64(math.MaxUint64)))
	assert.Equal(t, 10, RequiredSpace(int64(math.MinInt64)))
	assert.Equal(t, 1, RequiredSpace(int8(-64)))
	assert.Equal(t, 2, RequiredSpace(int8(64)))
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		got  []byte
		want []byte
	}{
		{"zero", Encode(uint32(0)), []byte{0x00}},
		{"300", Encode(uint32(300)), []byte{0b10101100, 0b00000010}},
		{"max_uint64", Encode(uint64(math.MaxUint64)), []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}},
		{"max_uint32", Encode(uint32(math.MaxUint32)), []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}},
		{"max_uint16", Encode(uint16(math.MaxUint16)), []byte{0xFF, 0xFF, 0x03}},
		{"max_uint8", Encode(uint8(math.MaxUint8)), []byte{0xFF, 0x01}},
		{"max_int64", Encode(int64(math.MaxInt64)), []byte{0xFE, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}},
		{"min_int64", Encode(int64(math.MinInt64)), []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.got)
		})
	}
}

func TestEncodeSigned(t *testing.T) {
	assert.Equal(t, Encode(uint32(0)), Encode(int64(0)))
	assert.Equal(t, Encode(uint32(300)), Encode(int64(150)))
	assert.Equal(t, Encode(uint32(299)), Encode(int64(-150)))
	assert.Equal(t, Encode(uint64(4294967295)), Encode(int64(-2147483648)))
	assert.Equal(t, Encode(uint32(300)), Encode(int16(150)))
	assert.Equal(t, Encode(uint32(299)), Encode(int16(-150)))
}

func TestSignSymmetry(t *testing.T) {
	for _, v := range []int8{0, 1, -1, 63, -64, math.MaxInt8, math.MinInt8} {
		assert.Equal(t, Encode(uint8(ZigZag(v))), Encode(v), "int8 %d", v)
	}
	for _, v := range []int16{0, -1, 150, -150, math.MaxInt16, math.MinInt16} {
		assert.Equal(t, Encode(uint16(ZigZag(v))), Encode(v), "int16 %d", v)
	}
	for _, v := range []int32{0, -1, -32456, math.MaxInt32, math.MinInt32} {
		assert.Equal(t, Encode(uint32(ZigZag(v))), Encode(v), "int32 %d", v)
	}
	for _, v := range []int64{0, -1, -150, 4200123456000, math.MaxInt64, math.MinInt64} {
		assert.Equal(t, Encode(ZigZag(v)), Encode(v), "int64 %d", v)
	}
}

func TestAppendAndPut(t *testing.T) {
	dst := []byte{0xAA}
	dst = Append(dst, uint32(300))
	assert.Equal(t, []byte{0xAA, 0xAC, 0x02}, dst)

	buf := make([]byte, MaxSize[int64]())
	n := Put(buf, int64(math.MinInt64))
	assert.Equal(t, 10, n)
	assert.Equal(t, Encode(int64(math.MinInt64)), buf[:n])
}

func TestIdentityUint64(t *testing.T) {
	for i := uint64(1); i < 100; i++ {
		v, n, err := Decode[uint64](Encode(i))
		require.NoError(t, err)
		assert.Equal(t, i, v)
		assert.Equal(t, 1, n)
	}
	for i := uint64(16400); i < 16500; i++ {
		v, n, err := Decode[uint64](Encode(i))
		require.NoError(t, err)
		assert.Equal(t, i, v)
		assert.Equal(t, 3, n)
	}
}

func TestRoundTripExhaustive(t *testing.T) {
	for v := 0; v <= math.MaxUint8; v++ {
		roundTrip(t, uint8(v))
	}
	for v := math.MinInt8; v <= math.MaxInt8; v++ {
		roundTrip(t, int8(v))
	}
	for v := 0; v <= math.MaxUint16; v++ {
		roundTrip(t, uint16(v))
	}
	for v := math.MinInt16; v <= math.MaxInt16; v++ {
		roundTrip(t, int16(v))
	}
}

func TestRoundTripBoundaries(t *testing.T) {
	for shift := 0; shift < 64; shift++ {
		p := uint64(1) << shift
		for _, u := range []uint64{p - 1, p, p + 1} {
			roundTrip(t, u)
			roundTrip(t, int64(u))
			roundTrip(t, -int64(u))
			roundTrip(t, uint32(u))
			roundTrip(t, int32(u))
			roundTrip(t, -int32(u))
		}
	}
	roundTrip(t, uint32(math.MaxUint32))
	roundTrip(t, int32(math.MinInt32))
	roundTrip(t, int32(math.MaxInt32))
	roundTrip(t, uint64(math.MaxUint64))
	roundTrip(t, int64(math.MinInt64))
	roundTrip(t, int64(math.MaxInt64))
}

func TestDecodeMax(t *testing.T) {
	t.Run("uint64", func(t *testing.T) {
		enc := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}
		v, n, err := Decode[uint64](enc)
		require.NoError(t, err)
		assert.Equal(t, uint64(math.MaxUint64), v)
		assert.Equal(t, 10, n)

		enc[9]++
		_, _, err = Decode[uint64](enc)
		assert.ErrorIs(t, err, ErrOverflow)
		enc[9] = 0x7F
		_, _, err = Decode[uint64](enc)
		assert.ErrorIs(t, err, ErrOverflow)
	})

	t.Run("uint32", func(t *testing.T) {
		enc := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}
		v, _, err := Decode[uint32](enc)
		require.NoError(t, err)
		assert.Equal(t, uint32(math.MaxUint32), v)

		enc[4]++
		_, _, err = Decode[uint32](enc)
		assert.ErrorIs(t, err, ErrOverflow)
		enc[4] = 0x7F
		_, _, err = Decode[uint32](enc)
		assert.ErrorIs(t, err, ErrOverflow)
	})

	t.Run("uint16", func(t *testing.T) {
		enc := []byte{0xFF, 0xFF, 0x03}
		v, _, err := Decode[uint16](enc)
		require.NoError(t, err)
		assert.Equal(t, uint16(math.MaxUint16), v)

		enc[2]++
		_, _, err = Decode[uint16](enc)
		assert.ErrorIs(t, err, ErrOverflow)
		enc[2] = 0x7F
		_, _, err = Decode[uint16](enc)
		assert.ErrorIs(t, err, ErrOverflow)
	})

	t.Run("uint8", func(t *testing.T) {
		enc := []byte{0xFF, 0x01}
		v, _, err := Decode[uint8](enc)
		require.NoError(t, err)
		assert.Equal(t, uint8(math.MaxUint8), v)

		enc[1]++
		_, _, err = Decode[uint8](enc)
		assert.ErrorIs(t, err, ErrOverflow)
		enc[1] = 0x7F
		_, _, err = Decode[uint8](enc)
		assert.ErrorIs(t, err, ErrOverflow)
	})

	t.Run("int64", func(t *testing.T) {
		v, _, err := Decode[int64]([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01})
		require.NoError(t, err)
		assert.Equal(t, int64(math.MinInt64), v)

		v, _, err = Decode[int64]([]byte{0xFE, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01})
		require.NoError(t, err)
		assert.Equal(t, int64(math.MaxInt64), v)
	})

	t.Run("int8", func(t *testing.T) {
		v, _, err := Decode[int8]([]byte{0xFF, 0x01})
		require.NoError(t, err)
		assert.Equal(t, int8(math.MinInt8), v)

		_, _, err = Decode[int8]([]byte{0x80, 0x02})
		assert.ErrorIs(t, err, ErrOverflow)
	})
}

func TestDecodeTruncated(t *testing.T) {
	check := func(t *testing.T, name string, maxSize int, decode func([]byte) error) {
		t.Helper()
		for n := 0; n <= maxSize; n++ {
			for _, fill := range []byte{0x80, 0xFF} {
				buf := make([]byte, n)
				for i := range buf {
					buf[i] = fill
				}
				assert.Error(t, decode(buf), "%s: %d bytes of %#x", name, n, fill)
			}
		}
	}

	check(t, "uint8", MaxSize[uint8](), func(b []byte) error { _, _, err := Decode[uint8](b); return err })
	check(t, "uint16", MaxSize[uint16](), func(b []byte) error { _, _, err := Decode[uint16](b); return err })
	check(t, "uint32", MaxSize[uint32](), func(b []byte) error { _, _, err := Decode[uint32](b); return err })
	check(t, "uint64", MaxSize[uint64](), func(b []byte) error { _, _, err := Decode[uint64](b); return err })
	check(t, "int8", MaxSize[int8](), func(b []byte) error { _, _, err := Decode[int8](b); return err })
	check(t, "int16", MaxSize[int16](), func(b []byte) error { _, _, err := Decode[int16](b); return err })
	check(t, "int32", MaxSize[int32](), func(b []byte) error { _, _, err := Decode[int32](b); return err })
	check(t, "int64", MaxSize[int64](), func(b []byte) error { _, _, err := Decode[int64](b); return err })

	_, n, err := Decode[uint64]([]byte{0xFF, 0xFF, 0xFF})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Zero(t, n)

	_, _, err = Decode[uint32](nil)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestDecodeExtraBytes(t *testing.T) {
	t.Run("uint64", func(t *testing.T) {
		enc := Encode(uint64(0x12345))
		v, n, err := Decode[uint64](enc)
		require.NoError(t, err)
		assert.Equal(t, uint64(0x12345), v)
		assert.Equal(t, 3, n)

		enc = append(enc, 0x99)
		v, n, err = Decode[uint64](enc)
		require.NoError(t, err)
		assert.Equal(t, uint64(0x12345), v)
		assert.Equal(t, 3, n)

		long := make([]byte, 64, 65)
		for i := range long {
			long[i] = 0xFF
		}
		long = append(long, 0x00)
		_, _, err = Decode[uint64](long)
		assert.ErrorIs(t, err, ErrOverflow)
	})

	t.Run("int64", func(t *testing.T) {
		enc := Encode(int64(-0x12345))
		v, n, err := Decode[int64](enc)
		require.NoError(t, err)
		assert.Equal(t, int64(-0x12345), v)
		assert.Equal(t, 3, n)

		enc = append(enc, 0x99, 0x80, 0xFF)
		v, n, err = Decode[int64](enc)
		require.NoError(t, err)
		assert.Equal(t, int64(-0x12345), v)
		assert.Equal(t, 3, n)
	})
}

func TestDecodeNonMinimal(t *testing.T) {
	// Zero-valued high groups are tolerated within the type's size.
	v, n, err := Decode[uint32]([]byte{0x81, 0x80, 0x80, 0x80, 0x00})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), v)
	assert.Equal(t, 5, n)

	v8, n, err := Decode[uint8]([]byte{0x80, 0x00})
	require.NoError(t, err)
	assert.Equal(t, uint8(0), v8)
	assert.Equal(t, 2, n)

	_, _, err = Decode[uint8]([]byte{0x80, 0x80, 0x00})
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestOverflowMessage(t *testing.T) {
	_, _, err := Decode[int16]([]byte{0xFF, 0xFF, 0x7F})
	require.ErrorIs(t, err, ErrOverflow)
	assert.Contains(t, err.Error(), "int16")
}

func TestZigZag(t *testing.T) {
	tests := []struct {
		signed   int64
		unsigned uint64
	}{
		{0, 0},
		{-1, 1},
		{1, 2},
		{-2, 3},
		{2, 4},
		{150, 300},
		{-150, 299},
		{math.MaxInt64, math.MaxUint64 - 1},
		{math.MinInt64, math.MaxUint64},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.unsigned, ZigZag(tc.signed), "ZigZag(%d)", tc.signed)
		assert.Equal(t, tc.signed, UnZigZag[int64](tc.unsigned), "UnZigZag(%d)", tc.unsigned)
	}

	assert.Equal(t, uint64(math.MaxUint8), ZigZag(int8(math.MinInt8)))
	assert.Equal(t, uint64(math.MaxUint8-1), ZigZag(int8(math.MaxInt8)))
	assert.Equal(t, int8(math.MinInt8), UnZigZag[int8](math.MaxUint8))
	assert.Equal(t, uint64(math.MaxUint16), ZigZag(int16(math.MinInt16)))
	assert.Equal(t, uint64(math.MaxUint32), ZigZag(int32(math.MinInt32)))
	assert.Equal(t, int32(-1), UnZigZag[int32](1|1<<40))

	for v := math.MinInt16; v <= math.MaxInt16; v++ {
		require.Equal(t, int16(v), UnZigZag[int16](ZigZag(int16(v))))
	}
}

type seq uint32

func TestNamedTypes(t *testing.T) {
	roundTrip(t, seq(300))
	assert.Equal(t, 5, MaxSize[seq]())
}

func TestStep(t *testing.T) {
	var s state
	s = step(s, 0xAC, 32)
	assert.Equal(t, accumulating, s.phase)
	assert.Equal(t, 1, s.n)
	s = step(s, 0x02, 32)
	assert.Equal(t, done, s.phase)
	assert.Equal(t, uint64(300), s.value)
	assert.Equal(t, 2, s.n)

	// terminal states absorb further input
	s = step(s, 0xFF, 32)
	assert.Equal(t, done, s.phase)
	assert.Equal(t, 2, s.n)

	s = step(state{}, 0xFF, 8)
	s = step(s, 0x02, 8)
	assert.Equal(t, overflowed, s.phase)

	s = step(state{}, 0x80, 8)
	s = step(s, 0x80, 8)
	assert.Equal(t, overflowed, s.phase)
}
