package dispatch

import (
	"errors"
	"fmt"
)

// Sentinel errors for the dispatch package.
var (
	// ErrNilHandler is returned when a nil handler is registered.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrHandlerPanic is matched by errors.Is for any recovered panic.
	ErrHandlerPanic = errors.New("callback panicked")
)

// HandlerError reports a handler that failed during fail-fast dispatch.
type HandlerError struct {
	// Index is the position of the subscription in dispatch order.
	Index int

	// Err is the error returned by the handler, or a *PanicError.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %d failed: %v", e.Index, e.Err)
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// PredicateError reports a predicate that failed during fail-fast dispatch.
// Predicates cannot return errors, so Err is always a *PanicError.
type PredicateError struct {
	Index int
	Err   error
}

// Error implements the error interface.
func (e *PredicateError) Error() string {
	return fmt.Sprintf("predicate %d failed: %v", e.Index, e.Err)
}

// Unwrap returns the underlying error.
func (e *PredicateError) Unwrap() error {
	return e.Err
}

// PanicError wraps a recovered panic value as an error.
type PanicError struct {
	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace captured at recovery.
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Is allows errors.Is to match PanicError with ErrHandlerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
