package behavior

import (
	"context"
	"reflect"

	"github.com/bjaus/mediator"
)

// Validatable is implemented by messages that can check their own fields.
type Validatable interface {
	Validate() error
}

// Validation rejects messages whose Validate method returns an error. The
// handler is not called and the dispatch fails with VALIDATION_ERROR.
// Messages that do not implement Validatable pass through.
//
// Validate may be declared on the value or on the pointer receiver.
func Validation() mediator.Behavior {
	return mediator.BehaviorFunc(func(ctx context.Context, msg mediator.Message, next mediator.Next) (any, error) {
		if v, ok := validatable(msg); ok {
			if err := v.Validate(); err != nil {
				return nil, mediator.Invalid(err)
			}
		}
		return next(ctx, msg)
	})
}

func validatable(msg mediator.Message) (Validatable, bool) {
	if v, ok := msg.(Validatable); ok {
		return v, true
	}
	rv := reflect.ValueOf(msg)
	if rv.Kind() == reflect.Pointer {
		return nil, false
	}
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)
	v, ok := p.Interface().(Validatable)
	return v, ok
}
