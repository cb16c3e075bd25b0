package errors

import (
	"fmt"
	"io"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/vango-dev/varint/pkg/varint"
)

// Category represents the type of error.
type Category string

const (
	CategoryDecode Category = "decode"
	CategoryInput  Category = "input"
	CategoryConfig Category = "config"
	CategoryIO     Category = "io"
	CategoryCLI    Category = "cli"
)

// Error is a structured error with a code, explanation and suggestion.
type Error struct {
	// Code is a unique error identifier (e.g., "V001").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Offset is the byte offset in the input where the failing value
	// starts, or -1 when unknown.
	Offset int

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// WithOffset records where in the input the failing value starts.
func (e *Error) WithOffset(off int) *Error {
	e.Offset = off
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// New creates an Error from a registered error code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:    code,
			Message: "Unknown error",
			Offset:  -1,
		}
	}
	return &Error{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		Offset:   -1,
	}
}

// FromError wraps a standard error in an Error.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return New(code).Wrap(err)
}

// FromDecode maps a failure from package varint onto a registered code.
// kind names the type that was being decoded.
func FromDecode(err error, kind varint.Kind) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	switch {
	case errors.Is(err, varint.ErrOverflow):
		return New(CodeOverflow).
			WithDetail(fmt.Sprintf("The encoding sets bits beyond the width of %s.", kind)).
			Wrap(err)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return New(CodeTruncated).
			WithDetail(fmt.Sprintf("The input ended inside a %s value, before a byte with the continuation bit cleared.", kind)).
			Wrap(err)
	case errors.Is(err, varint.ErrUnknownKind):
		return New(CodeUnknownKind).
			WithSuggestion("Use one of u8, u16, u32, u64, i8, i16, i32, i64").
			Wrap(err)
	case errors.Is(err, strconv.ErrRange), errors.Is(err, strconv.ErrSyntax):
		return New(CodeInvalidValue).
			WithDetail(fmt.Sprintf("The value is not a decimal %s.", kind)).
			Wrap(err)
	default:
		return New(CodeIO).Wrap(err)
	}
}

// Code returns the registered code of err, or "" if err is not an Error.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
