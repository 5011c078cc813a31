package engine

import (
	"errors"
	"fmt"
)

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeNoMatchingRule indicates a live active pair with no rule for
	// its symbol pair: the program is stuck on a redex, an unrecoverable
	// condition.
	ErrCodeNoMatchingRule RuntimeErrorCode = "NO_MATCHING_RULE"

	// ErrCodeBudgetExceeded indicates a caller-supplied reduction budget ran
	// out before the net reached normal form. This is an explicit
	// non-convergence result, not a program defect.
	ErrCodeBudgetExceeded RuntimeErrorCode = "BUDGET_EXCEEDED"
)

// RuntimeError is a reduction failure. Stuck-redex errors carry both agent
// symbols and node identifiers; budget errors carry the spent budget.
type RuntimeError struct {
	Code RuntimeErrorCode

	// Stuck-redex context.
	LeftSymbol  string
	RightSymbol string
	LeftNode    string
	RightNode   string

	// Budget context.
	Budget     int
	Reductions int
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	switch e.Code {
	case ErrCodeNoMatchingRule:
		return fmt.Sprintf("%s: no rule for active pair %s (%s) ~ %s (%s)",
			e.Code, e.LeftSymbol, e.LeftNode, e.RightSymbol, e.RightNode)
	case ErrCodeBudgetExceeded:
		return fmt.Sprintf("%s: reduction budget of %d exhausted after %d reductions",
			e.Code, e.Budget, e.Reductions)
	default:
		return string(e.Code)
	}
}

// IsStuckError reports whether err is a stuck-redex (no matching rule) error.
// Uses errors.As to handle wrapped errors.
func IsStuckError(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re) && re.Code == ErrCodeNoMatchingRule
}

// IsBudgetError reports whether err is a budget-exhaustion result.
// Uses errors.As to handle wrapped errors.
func IsBudgetError(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re) && re.Code == ErrCodeBudgetExceeded
}
