package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestRecover_WithPanic tests the Recover function when a panic occurs
func TestRecover_WithPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "fit label insult")
		panic("index out of range")
	}

	err := testFunc()
	if err == nil {
		t.Fatal("Expected error from recovered panic, got nil")
	}

	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T", err)
	}
	if panicErr.Operation != "fit label insult" {
		t.Errorf("Expected operation 'fit label insult', got '%s'", panicErr.Operation)
	}
	if panicErr.StackTrace == "" {
		t.Error("Expected non-empty stack trace")
	}
	if got, want := panicErr.Error(), "panic in fit label insult: index out of range"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !strings.Contains(panicErr.String(), "Stack trace:") {
		t.Error("String() should include the stack trace")
	}
}

// TestRecover_WithoutPanic tests the Recover function when no panic occurs
func TestRecover_WithoutPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "transform")
		return nil
	}

	if err := testFunc(); err != nil {
		t.Fatalf("Expected no error when no panic occurs, got: %v", err)
	}
}

// TestRecover_WithExistingError keeps the original error in the chain
func TestRecover_WithExistingError(t *testing.T) {
	originalErr := fmt.Errorf("original error")

	testFunc := func() (err error) {
		defer Recover(&err, "fit")
		err = originalErr
		panic("panic after error")
	}

	err := testFunc()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "panic in fit") {
		t.Errorf("Error message should contain panic info: %s", err.Error())
	}
	if !errors.Is(err, originalErr) {
		t.Error("Original error should remain in the chain")
	}
}

func TestSafeExecute(t *testing.T) {
	tests := []struct {
		name      string
		fn        func() error
		wantPanic bool
		wantErr   bool
	}{
		{name: "success", fn: func() error { return nil }},
		{name: "returned error", fn: func() error { return fmt.Errorf("boom") }, wantErr: true},
		{name: "string panic", fn: func() error { panic("nil matrix") }, wantErr: true, wantPanic: true},
		{name: "error panic", fn: func() error { panic(errors.New("bad shape")) }, wantErr: true, wantPanic: true},
		{name: "int panic", fn: func() error { panic(42) }, wantErr: true, wantPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SafeExecute("classifier.Fit", tt.fn)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SafeExecute() error = %v, wantErr %v", err, tt.wantErr)
			}
			var panicErr *PanicError
			if got := errors.As(err, &panicErr); got != tt.wantPanic {
				t.Errorf("errors.As(PanicError) = %v, want %v", got, tt.wantPanic)
			}
		})
	}
}
