// Package codecerr defines the error kinds shared by the encoding packages.
//
// Every decode or parse operation in this module reports failure with an
// *Error carrying one of the codes below. Callers match on the kind with
// errors.Is against the exported sentinels, regardless of how many layers
// of fmt.Errorf wrapping sit in between:
//
//	if errors.Is(err, codecerr.ErrChecksumMismatch) { ... }
package codecerr

import (
	"errors"
	"fmt"
)

// Error codes for the failure kinds of the codecs and the signing pipeline.
const (
	CodeInvalidCharacter = "INVALID_CHARACTER" // Non-alphabet symbol during Base58 decode
	CodeChecksumMismatch = "CHECKSUM_MISMATCH" // Base58Check checksum did not verify
	CodeInvalidLength    = "INVALID_LENGTH"    // Body length outside the allowed set
	CodeInvalidVersion   = "INVALID_VERSION"   // Unrecognized network prefix
	CodeInsufficientData = "INSUFFICIENT_DATA" // Varint or transaction field truncated
	CodeSignerFailure    = "SIGNER_FAILURE"    // EC signer rejected key or digest
	CodeTooShort         = "TOO_SHORT"         // Base58Check payload shorter than its checksum
)

// Error is a coded failure.
type Error struct {
	Code    string // One of the Code* constants
	Message string // Human-readable detail
	Cause   error  // Underlying error (if any)
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "failed"
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code. This lets the
// package sentinels match any error of their kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels, one per code.
var (
	ErrInvalidCharacter = &Error{Code: CodeInvalidCharacter}
	ErrChecksumMismatch = &Error{Code: CodeChecksumMismatch}
	ErrInvalidLength    = &Error{Code: CodeInvalidLength}
	ErrInvalidVersion   = &Error{Code: CodeInvalidVersion}
	ErrInsufficientData = &Error{Code: CodeInsufficientData}
	ErrSignerFailure    = &Error{Code: CodeSignerFailure}
	ErrTooShort         = &Error{Code: CodeTooShort}
)

// New returns an *Error with a formatted message.
func New(code string, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an *Error that records cause as its underlying error.
func Wrap(code string, cause error, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if
// there is none.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
