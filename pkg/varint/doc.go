// Package varint implements the LEB128-style variable-length integer
// encoding for every fixed-width Go integer type.
//
// Each byte carries seven payload bits in its low bits and a
// continuation flag in its high bit. Groups are written least
// significant first, and the last byte has the continuation flag
// cleared. Signed values are ZigZag-mapped into the unsigned domain of
// the same width before encoding, so small magnitudes stay small:
//
//	0  -> 0x00
//	-1 -> 0x01
//	1  -> 0x02
//	300 (uint) -> 0xAC 0x02
//
// # Sizes
//
// The longest encoding depends only on the width of the type:
//
//	int8,  uint8   2 bytes
//	int16, uint16  3 bytes
//	int32, uint32  5 bytes
//	int64, uint64  10 bytes
//
// # Decoding
//
// Decoding is all-or-nothing. An encoding that sets bits beyond the
// width of the target type fails with [ErrOverflow], an encoding that
// ends before its terminating byte fails with [io.ErrUnexpectedEOF].
// Bytes following the terminator are never consumed. Encodings padded
// with zero-valued high groups are accepted as long as they fit in
// [MaxSize] bytes.
//
// # Streams
//
// [Read] and [Write] move one value through an [io.Reader] or
// [io.Writer], reading exactly one byte per call. [ReadContext] and
// [WriteContext] do the same for sources and sinks that can be
// abandoned through a [context.Context]; [AsyncReader] and
// [AsyncWriter] adapt any blocking stream to that form.
package varint
