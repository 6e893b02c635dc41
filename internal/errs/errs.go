// Package errs defines the error kinds surfaced by the profile pipeline.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	KindStructure Kind = iota + 1
	KindMissingData
	KindInvalidParameter
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindStructure:
		return "structure error"
	case KindMissingData:
		return "missing data"
	case KindInvalidParameter:
		return "invalid parameter"
	case KindIO:
		return "io error"
	default:
		return "unknown error"
	}
}

// Sentinels for errors.Is matching against a Kind.
var (
	ErrStructure        = errors.New("structure error")
	ErrMissingData      = errors.New("missing data")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrIO               = errors.New("io error")
)

// Error is a tagged pipeline error. Index is the point index the error refers
// to, or -1 when it does not concern a single point.
type Error struct {
	Kind  Kind
	Op    string
	Field string
	Index int
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" (field %q", e.Field)
		if e.Index >= 0 {
			msg += fmt.Sprintf(", point %d", e.Index)
		}
		msg += ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrStructure:
		return e.Kind == KindStructure
	case ErrMissingData:
		return e.Kind == KindMissingData
	case ErrInvalidParameter:
		return e.Kind == KindInvalidParameter
	case ErrIO:
		return e.Kind == KindIO
	}
	return false
}

// Structure returns a KindStructure error.
func Structure(op, format string, args ...any) *Error {
	return &Error{Kind: KindStructure, Op: op, Index: -1, Msg: fmt.Sprintf(format, args...)}
}

// MissingData reports that field is absent on the point at index.
func MissingData(op, field string, index int) *Error {
	return &Error{Kind: KindMissingData, Op: op, Field: field, Index: index, Msg: "required value absent"}
}

// InvalidParameter returns a KindInvalidParameter error.
func InvalidParameter(op, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidParameter, Op: op, Index: -1, Msg: fmt.Sprintf(format, args...)}
}

// IO wraps a filesystem failure, keeping the cause.
func IO(op, path string, err error) *Error {
	return &Error{Kind: KindIO, Op: op, Index: -1, Msg: path, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
