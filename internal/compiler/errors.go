package compiler

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes compile errors.
type ErrorCode string

const (
	// ErrCodeUnboundName indicates a linear name with a missing pair
	// occurrence (count 0 or 1).
	ErrCodeUnboundName ErrorCode = "UNBOUND_NAME"

	// ErrCodeNonLinearName indicates a linear name occurring more than twice,
	// or twice with the same effective polarity.
	ErrCodeNonLinearName ErrorCode = "NON_LINEAR_NAME"

	// ErrCodeDuplicateRule indicates two rules declared for the same
	// unordered symbol pair, regardless of head orientation.
	ErrCodeDuplicateRule ErrorCode = "DUPLICATE_RULE"

	// ErrCodeMissingNet indicates a requested entry-point net does not exist
	// in the module.
	ErrCodeMissingNet ErrorCode = "MISSING_NET"
)

// CompileError is a fatal compilation failure. It carries the offending
// name, the occurrence count, and the surface text of the rule or net being
// compiled, so the caller can point at the source.
type CompileError struct {
	Code    ErrorCode
	Name    string // the linear name or net name involved, if any
	Count   int    // occurrence count for name-linearity errors
	Context string // surface text of the rule or net being compiled
	Detail  string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	msg := string(e.Code)
	switch e.Code {
	case ErrCodeUnboundName:
		msg = fmt.Sprintf("%s: name %q occurs %d time(s), want exactly two", e.Code, e.Name, e.Count)
	case ErrCodeNonLinearName:
		if e.Detail != "" {
			msg = fmt.Sprintf("%s: name %q %s", e.Code, e.Name, e.Detail)
		} else {
			msg = fmt.Sprintf("%s: name %q occurs %d times, want exactly two", e.Code, e.Name, e.Count)
		}
	case ErrCodeDuplicateRule:
		msg = fmt.Sprintf("%s: %s", e.Code, e.Detail)
	case ErrCodeMissingNet:
		msg = fmt.Sprintf("%s: net %q is not defined", e.Code, e.Name)
	}
	if e.Context != "" {
		return fmt.Sprintf("%s (in %s)", msg, e.Context)
	}
	return msg
}

// IsCompileError reports whether err is (or wraps) a CompileError with the
// given code.
func IsCompileError(err error, code ErrorCode) bool {
	var ce *CompileError
	return errors.As(err, &ce) && ce.Code == code
}
