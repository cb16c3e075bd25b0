// Package errors provides structured, actionable error messages for the
// varint command line tool and HTTP service.
//
// Each error carries a code (e.g. "V001") registered with a category,
// a short message and a longer explanation. Codec failures from
// package varint are mapped onto codes with FromDecode, so a caller
// sees why a byte sequence was rejected and what to try next:
//
//	err := errors.FromDecode(err, varint.Int8).WithSuggestion("Decode as int64")
//	fmt.Print(err.Format())
//	// ERROR V001: Encoded value overflows the target type
//	//
//	//   The encoding sets bits beyond the width of int8.
//	//
//	//   Hint: Decode as int64
package errors
