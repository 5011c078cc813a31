package symbol

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes symbol-table errors.
type ErrorCode string

const (
	// ErrCodeArityMismatch indicates a symbol occurred with two different
	// parameter counts.
	ErrCodeArityMismatch ErrorCode = "ARITY_MISMATCH"

	// ErrCodeUnknownAgent indicates a reference to a symbol that was never
	// declared by any rule head or agent application.
	ErrCodeUnknownAgent ErrorCode = "UNKNOWN_AGENT"
)

// Error is a symbol-table failure. All symbol errors are fatal compile
// errors; they carry the offending symbol name and, for arity mismatches,
// both conflicting arities.
type Error struct {
	Code     ErrorCode
	Symbol   string
	Declared int // prior arity (arity mismatch only)
	Got      int // conflicting arity (arity mismatch only)
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeArityMismatch:
		return fmt.Sprintf("%s: agent %q has arity %d, but %d arguments were given",
			e.Code, e.Symbol, e.Declared, e.Got)
	case ErrCodeUnknownAgent:
		return fmt.Sprintf("%s: agent %q is not declared", e.Code, e.Symbol)
	default:
		return fmt.Sprintf("%s: symbol %q", e.Code, e.Symbol)
	}
}

// IsArityMismatch reports whether err is an arity mismatch.
// Uses errors.As to handle wrapped errors.
func IsArityMismatch(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Code == ErrCodeArityMismatch
}

// IsUnknownAgent reports whether err is an unknown-agent reference.
// Uses errors.As to handle wrapped errors.
func IsUnknownAgent(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Code == ErrCodeUnknownAgent
}
