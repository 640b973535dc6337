package envelope

import (
	"errors"
	"fmt"

	"github.com/bjaus/mediator"
)

var (
	// ErrNoSource is returned when no source recognizes an envelope.
	ErrNoSource = errors.New("no source matched envelope")

	// ErrNoBinding is returned when a parsed key has no bound message type.
	ErrNoBinding = errors.New("no binding for key")

	// ErrDuplicateBinding is returned by Bind when the key is already bound.
	ErrDuplicateBinding = errors.New("duplicate binding")
)

// Stage names the step of Process at which an envelope was rejected.
type Stage string

const (
	StageMatch  Stage = "match"
	StageParse  Stage = "parse"
	StageBind   Stage = "bind"
	StageDecode Stage = "decode"
)

// Error describes an envelope that was rejected before reaching the
// mediator. It implements mediator.Coder: an unbound key is NOT_FOUND,
// everything else is VALIDATION_ERROR.
type Error struct {
	Stage  Stage
	Source string
	Key    string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Key != "":
		return fmt.Sprintf("envelope %s (source %s, key %s): %v", e.Stage, e.Source, e.Key, e.Err)
	case e.Source != "":
		return fmt.Sprintf("envelope %s (source %s): %v", e.Stage, e.Source, e.Err)
	default:
		return fmt.Sprintf("envelope %s: %v", e.Stage, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code implements mediator.Coder.
func (e *Error) Code() string {
	if e.Stage == StageBind {
		return mediator.CodeNotFound
	}
	return mediator.CodeValidation
}
