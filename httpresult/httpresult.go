// Package httpresult maps mediator Results onto HTTP responses.
//
// Handlers never see HTTP. The transport dispatches, then hands the Result
// to Adapt (or Write for gin) to pick a status code and a JSON body.
package httpresult

import (
	"errors"
	"maps"
	"net/http"

	"github.com/bjaus/mediator"
)

// DefaultStatuses maps well-known failure codes to HTTP statuses. Codes not
// listed use the default failure status, 400 unless overridden.
var DefaultStatuses = map[string]int{
	mediator.CodeNotFound:     http.StatusNotFound,
	mediator.CodeValidation:   http.StatusUnprocessableEntity,
	mediator.CodeUnauthorized: http.StatusUnauthorized,
	mediator.CodeForbidden:    http.StatusForbidden,
	mediator.CodeConflict:     http.StatusConflict,
	mediator.CodeRateLimited:  http.StatusTooManyRequests,
	mediator.CodeTimeout:      http.StatusGatewayTimeout,
	mediator.CodeCanceled:     499,
	mediator.CodeInternal:     http.StatusInternalServerError,
	mediator.CodePanic:        http.StatusInternalServerError,
	mediator.CodeTypeMismatch: http.StatusInternalServerError,
	mediator.CodePipeline:     http.StatusInternalServerError,
}

// Body is the JSON body written for a Result. Exactly one field is set.
type Body struct {
	Data  any      `json:"data,omitempty"`
	Error *Problem `json:"error,omitempty"`
}

// Problem describes a failed Result.
type Problem struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// Option overrides how Adapt maps a Result.
type Option func(*config)

type config struct {
	success  int
	fallback int
	statuses map[string]int
}

// WithSuccessStatus sets the status for a successful Result, e.g. 201 for
// a create route. Defaults to 200.
func WithSuccessStatus(status int) Option {
	return func(c *config) {
		c.success = status
	}
}

// WithStatus maps one failure code to status for this call.
func WithStatus(code string, status int) Option {
	return func(c *config) {
		c.statuses[code] = status
	}
}

// WithDefaultStatus sets the status for failure codes with no mapping.
// Defaults to 400.
func WithDefaultStatus(status int) Option {
	return func(c *config) {
		c.fallback = status
	}
}

// Adapt returns the HTTP status and body for res.
//
// Failures with a 5xx status carry only their code: the cause of an
// unexpected error stays in the server logs.
//
// Example:
//
//	status, body := httpresult.Adapt(res, httpresult.WithSuccessStatus(http.StatusCreated))
func Adapt(res mediator.Result[any], opts ...Option) (int, Body) {
	cfg := config{
		success:  http.StatusOK,
		fallback: http.StatusBadRequest,
		statuses: maps.Clone(DefaultStatuses),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if res.Success() {
		return cfg.success, Body{Data: res.MustValue()}
	}

	code := res.MustCode()
	status, ok := cfg.statuses[code]
	if !ok {
		status = cfg.fallback
	}

	p := &Problem{Code: code}
	if status < http.StatusInternalServerError {
		p.Message = message(res.Err())
	}
	return status, Body{Error: p}
}

// FromError converts an error returned by Dispatch or an envelope Inbox
// into a failed Result whose code comes from mediator.CodeOf.
func FromError(err error) mediator.Result[any] {
	return mediator.FailWith[any](mediator.CodeOf(err), err)
}

func message(err error) string {
	var me *mediator.Error
	if errors.As(err, &me) {
		return me.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
