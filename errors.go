package mediator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

// Configuration errors. These mean the process is wired incorrectly and are
// returned as Go errors, never folded into a Result.
var (
	// ErrDuplicateRegistration is returned when a message type already has a
	// handler.
	ErrDuplicateRegistration = errors.New("duplicate handler registration")

	// ErrHandlerNotFound is returned by Dispatch when no handler is bound to
	// the message's type.
	ErrHandlerNotFound = errors.New("handler not found")

	// ErrNilMessage is returned by Dispatch when the message is nil.
	ErrNilMessage = errors.New("nil message")

	errInterfaceMessage = errors.New("message type must be concrete, not an interface")
)

// Programming errors raised by Result accessors and the pipeline.
var (
	// ErrNoValue is returned when reading the value of a failed Result.
	ErrNoValue = errors.New("result has no value")

	// ErrNoCode is returned when reading the code of a successful Result.
	ErrNoCode = errors.New("result has no code")

	// ErrNextReinvoked is returned by a continuation that is called again
	// while running or after it already succeeded.
	ErrNextReinvoked = errors.New("next invoked more than once")
)

// Well-known failure codes. Handlers may use any string; these are the ones
// the runtime derives itself plus the ones the HTTP adapter maps by default.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeRateLimited  = "RATE_LIMITED"
	CodeTimeout      = "TIMEOUT"
	CodeCanceled     = "CANCELED"
	CodeInternal     = "INTERNAL_ERROR"
	CodePanic        = "PANIC"
	CodeTypeMismatch = "TYPE_MISMATCH"
	CodePipeline     = "PIPELINE_MISUSE"
)

// Coder is implemented by errors that know their failure code. Dispatch uses
// it to turn a returned error into Fail(code).
type Coder interface {
	Code() string
}

// Error is a coded error. Handlers return it (or anything implementing
// Coder) to produce a specific failure code; Result.Err returns it for
// failed Results.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error with the same code, so errors.Is(err,
// &Error{Code: CodeNotFound}) works across wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code && t.Message == "" && t.Err == nil
}

// NewError returns an *Error with the given code and formatted message.
func NewError(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns a CodeNotFound error.
func NotFound(format string, args ...any) *Error {
	return NewError(CodeNotFound, format, args...)
}

// Invalid returns a CodeValidation error wrapping err.
func Invalid(err error) *Error {
	return &Error{Code: CodeValidation, Message: err.Error(), Err: err}
}

// Unauthorized returns a CodeUnauthorized error.
func Unauthorized(format string, args ...any) *Error {
	return NewError(CodeUnauthorized, format, args...)
}

// Forbidden returns a CodeForbidden error.
func Forbidden(format string, args ...any) *Error {
	return NewError(CodeForbidden, format, args...)
}

// Conflict returns a CodeConflict error.
func Conflict(format string, args ...any) *Error {
	return NewError(CodeConflict, format, args...)
}

// CodeOf derives the failure code for err:
//   - a *Error or any Coder in the chain supplies its own code, including
//     one passed to panic()
//   - any other *PanicError yields CodePanic
//   - ErrNextReinvoked yields CodePipeline
//   - context.DeadlineExceeded yields CodeTimeout, context.Canceled CodeCanceled
//   - anything else yields CodeInternal
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var me *Error
	if errors.As(err, &me) && me.Code != "" {
		return me.Code
	}
	var c Coder
	if errors.As(err, &c) {
		return c.Code()
	}
	var pe *PanicError
	switch {
	case errors.As(err, &pe):
		return CodePanic
	case errors.Is(err, ErrNextReinvoked):
		return CodePipeline
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, context.Canceled):
		return CodeCanceled
	}
	return CodeInternal
}

// PanicError records a panic recovered at the dispatch boundary.
type PanicError struct {
	// Value is what was passed to panic().
	Value any
	// Stack is the goroutine stack at the point of recovery.
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic recovered: %v", e.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// RegistrationError describes a failed handler registration.
type RegistrationError struct {
	Type reflect.Type
	Err  error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("register %s: %v", e.Type, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// NotFoundError describes a dispatch with no handler bound.
type NotFoundError struct {
	Type reflect.Type
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v for %s", ErrHandlerNotFound, e.Type)
}

func (e *NotFoundError) Unwrap() error { return ErrHandlerNotFound }
