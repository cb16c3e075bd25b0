package varint

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Kind identifies one of the supported integer types at run time.
type Kind uint8

const (
	Uint8 Kind = iota + 1
	Uint16
	Uint32
	Uint64
	Int8
	Int16
	Int32
	Int64
)

// Kinds lists every supported kind.
var Kinds = []Kind{Uint8, Uint16, Uint32, Uint64, Int8, Int16, Int32, Int64}

var kindNames = map[string]Kind{
	"u8": Uint8, "uint8": Uint8,
	"u16": Uint16, "uint16": Uint16,
	"u32": Uint32, "uint32": Uint32,
	"u64": Uint64, "uint64": Uint64,
	"i8": Int8, "int8": Int8,
	"i16": Int16, "int16": Int16,
	"i32": Int32, "int32": Int32,
	"i64": Int64, "int64": Int64,
}

// ParseKind parses a type name such as "u32", "uint32", "i8" or "int64".
func ParseKind(s string) (Kind, error) {
	k, ok := kindNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownKind, "%q", s)
	}
	return k, nil
}

// String returns the Go name of the type.
func (k Kind) String() string {
	switch k {
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	return k >= Uint8 && k <= Int64
}

// Bits returns the bit width of the type.
func (k Kind) Bits() int {
	switch k {
	case Uint8, Int8:
		return 8
	case Uint16, Int16:
		return 16
	case Uint32, Int32:
		return 32
	case Uint64, Int64:
		return 64
	default:
		return 0
	}
}

// Signed reports whether the type is signed.
func (k Kind) Signed() bool {
	return k >= Int8 && k <= Int64
}

// MaxSize returns the maximum encoded size of the type.
func (k Kind) MaxSize() int {
	return maxSizeBits(uint(k.Bits()))
}

// AppendText parses a decimal value of kind k and appends its encoding
// to dst.
func (k Kind) AppendText(dst []byte, s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !k.Valid() {
		return dst, errors.Wrapf(ErrUnknownKind, "%s", k)
	}
	if k.Signed() {
		v, err := strconv.ParseInt(s, 10, k.Bits())
		if err != nil {
			return dst, errors.Wrapf(err, "parsing %s", k)
		}
		return Append(dst, v), nil
	}
	v, err := strconv.ParseUint(s, 10, k.Bits())
	if err != nil {
		return dst, errors.Wrapf(err, "parsing %s", k)
	}
	return Append(dst, v), nil
}

// RequiredSpaceText returns the encoded size of the decimal value s.
func (k Kind) RequiredSpaceText(s string) (int, error) {
	b, err := k.AppendText(nil, s)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

// DecodeText decodes one value of kind k from buf and returns it in
// decimal form with the number of bytes consumed.
func (k Kind) DecodeText(buf []byte) (string, int, error) {
	switch k {
	case Uint8:
		return decodeText[uint8](buf)
	case Uint16:
		return decodeText[uint16](buf)
	case Uint32:
		return decodeText[uint32](buf)
	case Uint64:
		return decodeText[uint64](buf)
	case Int8:
		return decodeText[int8](buf)
	case Int16:
		return decodeText[int16](buf)
	case Int32:
		return decodeText[int32](buf)
	case Int64:
		return decodeText[int64](buf)
	default:
		return "", 0, errors.Wrapf(ErrUnknownKind, "%s", k)
	}
}

// ReadText reads one value of kind k from r and returns it in decimal
// form. Errors match Read.
func (k Kind) ReadText(r io.Reader) (string, error) {
	switch k {
	case Uint8:
		return readText[uint8](r)
	case Uint16:
		return readText[uint16](r)
	case Uint32:
		return readText[uint32](r)
	case Uint64:
		return readText[uint64](r)
	case Int8:
		return readText[int8](r)
	case Int16:
		return readText[int16](r)
	case Int32:
		return readText[int32](r)
	case Int64:
		return readText[int64](r)
	default:
		return "", errors.Wrapf(ErrUnknownKind, "%s", k)
	}
}

// ReadAppendContext reads one value of kind k from r and appends its
// canonical encoding to dst. Errors match ReadContext; on failure dst
// is returned unchanged.
func (k Kind) ReadAppendContext(ctx context.Context, r ContextByteReader, dst []byte) ([]byte, error) {
	switch k {
	case Uint8:
		return readAppendContext[uint8](ctx, r, dst)
	case Uint16:
		return readAppendContext[uint16](ctx, r, dst)
	case Uint32:
		return readAppendContext[uint32](ctx, r, dst)
	case Uint64:
		return readAppendContext[uint64](ctx, r, dst)
	case Int8:
		return readAppendContext[int8](ctx, r, dst)
	case Int16:
		return readAppendContext[int16](ctx, r, dst)
	case Int32:
		return readAppendContext[int32](ctx, r, dst)
	case Int64:
		return readAppendContext[int64](ctx, r, dst)
	default:
		return dst, errors.Wrapf(ErrUnknownKind, "%s", k)
	}
}

func decodeText[T Integer](buf []byte) (string, int, error) {
	v, n, err := Decode[T](buf)
	if err != nil {
		return "", 0, err
	}
	return formatInteger(v), n, nil
}

func readText[T Integer](r io.Reader) (string, error) {
	v, err := Read[T](r)
	if err != nil {
		return "", err
	}
	return formatInteger(v), nil
}

func readAppendContext[T Integer](ctx context.Context, r ContextByteReader, dst []byte) ([]byte, error) {
	v, err := ReadContext[T](ctx, r)
	if err != nil {
		return dst, err
	}
	return Append(dst, v), nil
}

func formatInteger[T Integer](v T) string {
	if _, signed := width[T](); signed {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatUint(uint64(v), 10)
}

// KindOf returns the Kind describing T.
func KindOf[T Integer]() Kind {
	w, signed := width[T]()
	switch {
	case w == 8 && signed:
		return Int8
	case w == 8:
		return Uint8
	case w == 16 && signed:
		return Int16
	case w == 16:
		return Uint16
	case w == 32 && signed:
		return Int32
	case w == 32:
		return Uint32
	case signed:
		return Int64
	default:
		return Uint64
	}
}
