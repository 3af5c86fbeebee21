package errors

import (
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// PanicError is an error built from a recovered panic inside a classifier or
// vectorizer call. The per-label training loop converts panics into this type so
// one misbehaving model surfaces as an error instead of crashing the run.
type PanicError struct {
	PanicValue interface{}
	StackTrace string
	Operation  string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Operation, e.PanicValue)
}

// String includes the captured stack trace.
func (e *PanicError) String() string {
	return fmt.Sprintf("panic in %s: %v\nStack trace:\n%s", e.Operation, e.PanicValue, e.StackTrace)
}

// MarshalZerologObject はzerologのイベントにパニック情報を追加します。
func (e *PanicError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Operation).
		Str("panic", fmt.Sprint(e.PanicValue)).
		Str("type", "PanicError")
}

// NewPanicError creates a PanicError capturing the current goroutine stack.
func NewPanicError(operation string, panicValue interface{}) *PanicError {
	return &PanicError{
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
		Operation:  operation,
	}
}

// Recover converts a panic into an error assigned to *err. Use with defer:
//
//	func fit() (err error) {
//	    defer Recover(&err, "fit")
//	    ...
//	}
//
// If *err is already set, the panic is attached to it.
func Recover(err *error, operation string) {
	r := recover()
	if r == nil {
		return
	}
	panicErr := NewPanicError(operation, r)
	if *err != nil {
		*err = Wrapf(*err, "panic in %s: %v", operation, r)
		return
	}
	*err = panicErr
}

// SafeExecute runs fn and turns any panic into a *PanicError.
func SafeExecute(operation string, fn func() error) (err error) {
	defer Recover(&err, operation)
	return fn()
}
