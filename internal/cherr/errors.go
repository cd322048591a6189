// SPDX-License-Identifier: MIT

// Package cherr defines the structural error kinds shared by the
// simulation service. Every component returns one of these kinds; the
// HTTP boundary translates kinds to status codes.
package cherr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for boundary translation.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidState
	KindSimulator
	KindNotEnoughData
	KindStore
	KindSerialization
)

// String returns the human-readable label for the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInvalidState:
		return "invalid state"
	case KindSimulator:
		return "simulator error"
	case KindNotEnoughData:
		return "not enough data"
	case KindStore:
		return "store error"
	case KindSerialization:
		return "serialization error"
	default:
		return "internal error"
	}
}

// Error is a kinded error carrying a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error // optional wrapped cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to an error of the given kind.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// NotFound reports a missing entity.
func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

// InvalidState reports an operation illegal for the current state.
func InvalidState(format string, args ...any) *Error {
	return New(KindInvalidState, format, args...)
}

// Simulator reports a walk or pricing inconsistency.
func Simulator(format string, args ...any) *Error {
	return New(KindSimulator, format, args...)
}

// NotEnoughData reports an unsatisfiable historical range.
func NotEnoughData(format string, args ...any) *Error {
	return New(KindNotEnoughData, format, args...)
}

// Internal reports an unexpected failure.
func Internal(format string, args ...any) *Error {
	return New(KindInternal, format, args...)
}

// KindOf extracts the kind from an error chain; unknown errors are internal.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindInternal
}

// IsNotFound reports whether the error chain carries KindNotFound.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsInvalidState reports whether the error chain carries KindInvalidState.
func IsInvalidState(err error) bool { return KindOf(err) == KindInvalidState }
