// Package solverr defines the error kinds spec §7 requires the core to
// surface, in the teacher's style: a small named struct implementing error,
// rather than a library of sentinel values.
package solverr

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies an Error the way spec §7 enumerates them.
type Kind int

const (
	KindInput Kind = iota
	KindRouting
	KindInfeasibility
	KindCostOverflow
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindRouting:
		return "routing"
	case KindInfeasibility:
		return "infeasibility"
	case KindCostOverflow:
		return "cost_overflow"
	default:
		return "internal"
	}
}

// ExitCode maps a Kind to the cmd/solver exit code from spec §6/§7.
// Infeasibility surfaces as an input-class problem: it is only ever raised
// in check mode, against a user-supplied step sequence, so the CLI treats
// it the same as a malformed request rather than a distinct process outcome.
func (k Kind) ExitCode() int {
	switch k {
	case KindInput, KindInfeasibility:
		return 2
	case KindRouting:
		return 3
	default:
		return 1
	}
}

// Error is the single error shape the core ever returns (spec §7: "the core
// never recovers from any of these; it surfaces a single exception-equivalent
// carrying the kind and a human-readable message").
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a bare Error with no underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches kind/message to an underlying collaborator error (matrix
// fetch, input decode), using pkg/errors at the boundary the way the
// teacher's distance/geocoding layers do.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: pkgerrors.WithMessage(cause, message)}
}

// As reports whether err is (or wraps) a *Error, and returns it.
func As(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
