package varint

import (
	"github.com/cockroachdb/errors"
)

// ErrOverflow reports an encoding whose value does not fit the target
// integer type.
var ErrOverflow = errors.New("varint: value overflows target type")

// ErrUnknownKind is returned by ParseKind for an unrecognised type name.
var ErrUnknownKind = errors.New("varint: unknown integer kind")

func overflowError(bits uint, signed bool) error {
	if signed {
		return errors.Wrapf(ErrOverflow, "decoding int%d", bits)
	}
	return errors.Wrapf(ErrOverflow, "decoding uint%d", bits)
}
