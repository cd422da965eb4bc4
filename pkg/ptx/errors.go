package ptx

import "fmt"

// API error types.

// ProposalError is returned when a transaction proposal fails.
//
// This can occur during Creator, Constructor, or IO Finalizer role execution.
// Common causes: invalid inputs, insufficient funds, invalid addresses.
type ProposalError struct {
	Code    string // Error code (e.g., ErrInvalidInput, ErrInsufficientFunds)
	Message string // Human-readable error message
	Cause   error  // Underlying error (if any)
}

func (e *ProposalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("proposal error [%s]: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("proposal error [%s]: %s", e.Code, e.Message)
}

func (e *ProposalError) Unwrap() error { return e.Cause }

// VerificationFailure is returned when a finished transaction does not
// satisfy the scripts it spends.
type VerificationFailure struct {
	Code    string                 // Error code (e.g., ErrInvalidSignature)
	Message string                 // Human-readable error message
	Details map[string]interface{} // Additional context about the failure
}

func (e *VerificationFailure) Error() string {
	return fmt.Sprintf("verification failed [%s]: %s", e.Code, e.Message)
}

// SighashError is returned when the signature hash of an input cannot be
// computed.
type SighashError struct {
	InputIndex int    // Index of the input that caused the error
	Message    string // Human-readable error message
	Cause      error  // Underlying error (if any)
}

func (e *SighashError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sighash error at input %d: %s: %v", e.InputIndex, e.Message, e.Cause)
	}
	return fmt.Sprintf("sighash error at input %d: %s", e.InputIndex, e.Message)
}

func (e *SighashError) Unwrap() error { return e.Cause }

// SignatureError is returned when signing an input fails or a supplied
// signature does not match the input.
type SignatureError struct {
	InputIndex int    // Index of the input that caused the error
	Message    string // Human-readable error message
	Cause      error  // Underlying error (if any)
}

func (e *SignatureError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("signature error at input %d: %s: %v", e.InputIndex, e.Message, e.Cause)
	}
	return fmt.Sprintf("signature error at input %d: %s", e.InputIndex, e.Message)
}

func (e *SignatureError) Unwrap() error { return e.Cause }

// CombineError is returned when PTXs cannot be merged.
//
// Fails if the PTXs describe different transactions or carry conflicting
// signatures.
type CombineError struct {
	Message string // Human-readable error message
	Cause   error  // Underlying error (if any)
}

func (e *CombineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("combine error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("combine error: %s", e.Message)
}

func (e *CombineError) Unwrap() error { return e.Cause }

// FinalizationError is returned when finalization or extraction fails.
//
// Common causes: missing signatures, scripts that do not match.
type FinalizationError struct {
	Code       string // Error code (e.g., ErrIncompletePTX)
	InputIndex int    // Index of the failing input, or -1
	Message    string // Human-readable error message
	Cause      error  // Underlying error (if any)
}

func (e *FinalizationError) Error() string {
	msg := e.Message
	if e.InputIndex >= 0 {
		msg = fmt.Sprintf("input %d: %s", e.InputIndex, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("finalization error [%s]: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("finalization error [%s]: %s", e.Code, msg)
}

func (e *FinalizationError) Unwrap() error { return e.Cause }

// ParseError is returned when PTX bytes cannot be decoded.
//
// This occurs when the input data is not a valid PTX (wrong magic bytes,
// unsupported version, or a truncated body).
type ParseError struct {
	Message string // Human-readable error message
	Cause   error  // Underlying decode error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// Error codes used throughout the PTX API.
const (
	ErrInvalidInput      = "INVALID_INPUT"      // Input data is invalid or malformed
	ErrInsufficientFunds = "INSUFFICIENT_FUNDS" // Outputs exceed inputs
	ErrInvalidAddress    = "INVALID_ADDRESS"    // Address format is invalid or unsupported
	ErrInvalidSighash    = "INVALID_SIGHASH"    // Signature hash computation failed
	ErrInvalidSignature  = "INVALID_SIGNATURE"  // Signature is invalid or doesn't verify
	ErrIncompletePTX     = "INCOMPLETE_PTX"     // PTX is missing required data (e.g., signatures)
	ErrInvalidPTX        = "INVALID_PTX"        // PTX structure is invalid or inconsistent
	ErrConflictingData   = "CONFLICTING_DATA"   // Conflicting data when combining PTXs
)
