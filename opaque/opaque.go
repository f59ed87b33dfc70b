// Package opaque implements the canonical erased error.
//
// Factories and services declare their own error types. A server loop that
// drives many different implementations cannot know all of them, so every
// error crossing that boundary is converted with Erase first. The result is
// a plain error value safe to pass between goroutines, with a non-empty
// message derived from the original. The original error stays reachable
// through errors.Is and errors.As.
package opaque

import (
	"fmt"
)

// Error is an erased error
type Error struct {
	msg   string
	cause error
}

// Error implements error
func (e *Error) Error() string {
	return e.msg
}

// Unwrap returns the original error
func (e *Error) Unwrap() error {
	return e.cause
}

// NilMessage is the description of an erased nil error
const NilMessage = "unspecified error"

// Erase converts an error of any type into the canonical erased error.
//
// The message of the result is never empty: an empty message is replaced by
// the type name of the original, and a nil error becomes NilMessage. Erasing
// an already erased error returns it unchanged.
func Erase[E error](err E) error {
	var cause error = err
	if cause == nil {
		return &Error{msg: NilMessage}
	}
	if erased, ok := cause.(*Error); ok && erased != nil {
		return erased
	}
	return &Error{msg: describe(cause), cause: cause}
}

func describe(err error) (msg string) {
	defer func() {
		// nil pointer receiver
		if p := recover(); p != nil {
			msg = fmt.Sprintf("%T(nil)", err)
		}
	}()
	msg = err.Error()
	if msg == "" {
		msg = fmt.Sprintf("%T", err)
	}
	return msg
}
