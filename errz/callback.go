// Package errz defines the structured errors reported by the hook engine.
package errz

import (
	"errors"
	"fmt"
)

// Callback names one of the collaborator entry points the engine calls.
type Callback int

const (
	// CallbackDepthProbe is the reentrancy probe.
	CallbackDepthProbe Callback = iota
	// CallbackPoll is the periodic remote command poll.
	CallbackPoll
	// CallbackRegisterSource is the lazy source registration.
	CallbackRegisterSource
	// CallbackNotifyBreak is the break notification.
	CallbackNotifyBreak
)

// String returns the string representation of the callback.
func (c Callback) String() string {
	switch c {
	case CallbackDepthProbe:
		return "depth probe"
	case CallbackPoll:
		return "poll"
	case CallbackRegisterSource:
		return "register source"
	case CallbackNotifyBreak:
		return "notify break"
	default:
		return "callback"
	}
}

// CallbackError is a failure of a collaborator callback.
type CallbackError struct {
	Callback Callback
	// Source and Line locate the event that triggered the call. Line is
	// -1 when unknown.
	Source string
	Line   int
	// Panic is true when the callback panicked rather than returning an
	// error.
	Panic bool
	Cause error
}

// Error implements the error interface.
func (e *CallbackError) Error() string {
	verb := "failed"
	if e.Panic {
		verb = "panicked"
	}
	if e.Source == "" {
		return fmt.Sprintf("%s %s: %v", e.Callback, verb, e.Cause)
	}
	return fmt.Sprintf("%s %s at %s:%d: %v", e.Callback, verb, e.Source, e.Line, e.Cause)
}

// Unwrap returns the underlying cause of the error.
func (e *CallbackError) Unwrap() error {
	return e.Cause
}

// NewCallbackError creates a CallbackError without location.
func NewCallbackError(cb Callback, cause error) *CallbackError {
	return &CallbackError{Callback: cb, Line: -1, Cause: cause}
}

// At sets the location of the event that triggered the callback.
func (e *CallbackError) At(source string, line int) *CallbackError {
	e.Source = source
	e.Line = line
	return e
}

// FromPanic converts a recovered panic value into a CallbackError.
func FromPanic(cb Callback, r any) *CallbackError {
	var cause error
	switch v := r.(type) {
	case error:
		cause = v
	case string:
		cause = errors.New(v)
	default:
		cause = fmt.Errorf("%v", v)
	}
	return &CallbackError{Callback: cb, Line: -1, Panic: true, Cause: cause}
}

// AsCallbackError returns the CallbackError in err's chain, if any.
func AsCallbackError(err error) (*CallbackError, bool) {
	var cbErr *CallbackError
	if errors.As(err, &cbErr) {
		return cbErr, true
	}
	return nil, false
}

// AssertionError is an internal invariant violation, only raised in
// builds with assertions enabled.
type AssertionError struct {
	Message string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return "assertion failed: " + e.Message
}

// Assertionf creates an AssertionError with a formatted message.
func Assertionf(format string, args ...any) *AssertionError {
	return &AssertionError{Message: fmt.Sprintf(format, args...)}
}
