package mediator

import (
	"errors"
	"fmt"
	"reflect"
)

// Result is the uniform outcome of a dispatch: either a success carrying a
// value or a failure carrying an error code. Exactly one side is populated.
//
// Results are values. The fields are unexported so a Result cannot change
// after construction.
//
//	r := mediator.Ok(UserID(42))
//	if r.Success() {
//	    id := r.MustValue()
//	}
type Result[T any] struct {
	value   T
	code    string
	cause   error
	success bool
}

// Ok returns a successful Result carrying v. For void operations pass
// struct{}{} or use Ok[any](nil).
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v, success: true}
}

// Fail returns a failed Result carrying an opaque error code such as
// "NOT_FOUND" or "VALIDATION_ERROR".
func Fail[T any](code string) Result[T] {
	return Result[T]{code: code}
}

// FailWith returns a failed Result that also keeps the error that caused
// it, so callers can log type and message without parsing the code.
func FailWith[T any](code string, cause error) Result[T] {
	return Result[T]{code: code, cause: cause}
}

// Success reports whether the Result was constructed with Ok.
func (r Result[T]) Success() bool {
	return r.success
}

// Value returns the success value, or ErrNoValue if r is a failure.
func (r Result[T]) Value() (T, error) {
	if !r.success {
		var zero T
		return zero, fmt.Errorf("%w: result failed with code %q", ErrNoValue, r.code)
	}
	return r.value, nil
}

// Code returns the failure code, or ErrNoCode if r is a success.
func (r Result[T]) Code() (string, error) {
	if r.success {
		return "", ErrNoCode
	}
	return r.code, nil
}

// MustValue is like Value but panics on a failed Result.
func (r Result[T]) MustValue() T {
	v, err := r.Value()
	if err != nil {
		panic(err)
	}
	return v
}

// MustCode is like Code but panics on a successful Result.
func (r Result[T]) MustCode() string {
	c, err := r.Code()
	if err != nil {
		panic(err)
	}
	return c
}

// Err returns nil for a success. For a failure it returns an *Error with
// the code, wrapping the original cause when one was recorded.
func (r Result[T]) Err() error {
	if r.success {
		return nil
	}
	if r.cause == nil {
		return &Error{Code: r.code}
	}
	var me *Error
	if errors.As(r.cause, &me) && me.Code == r.code {
		return r.cause
	}
	return &Error{Code: r.code, Message: r.cause.Error(), Err: r.cause}
}

// Erase converts r into a Result[any] without changing its outcome.
func (r Result[T]) Erase() Result[any] {
	if !r.success {
		return Result[any]{code: r.code, cause: r.cause}
	}
	return Result[any]{value: r.value, success: true}
}

func (r Result[T]) String() string {
	if r.success {
		return fmt.Sprintf("Ok(%v)", r.value)
	}
	if r.cause != nil {
		return fmt.Sprintf("Fail(%s: %v)", r.code, r.cause)
	}
	return fmt.Sprintf("Fail(%s)", r.code)
}

// eraser is implemented by every instantiation of Result. The mediator uses
// it to recognize a Result returned by a handler regardless of T.
type eraser interface {
	Erase() Result[any]
}

// As converts an erased Result back to Result[R]. Failures keep their code
// and cause. A success whose value is not an R becomes a CodeTypeMismatch
// failure.
func As[R any](r Result[any]) Result[R] {
	if !r.success {
		return Result[R]{code: r.code, cause: r.cause}
	}
	if r.value == nil && nilable(reflect.TypeFor[R]()) {
		var zero R
		return Ok(zero)
	}
	v, ok := r.value.(R)
	if !ok {
		var zero R
		return FailWith[R](CodeTypeMismatch, fmt.Errorf("result value %T is not %T", r.value, zero))
	}
	return Ok(v)
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return true
	default:
		return false
	}
}
