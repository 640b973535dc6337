package mediator_test

import (
	"context"
	"fmt"

	"github.com/bjaus/mediator"
)

// CreateUser is a command.
type CreateUser struct {
	Name string
}

// UserID identifies a created user.
type UserID int

// CreateUserHandler handles CreateUser.
type CreateUserHandler struct{}

func (h *CreateUserHandler) Handle(ctx context.Context, cmd CreateUser) (UserID, error) {
	fmt.Println("Creating user:", cmd.Name)
	return 42, nil
}

// GetUser is a query.
type GetUser struct {
	ID int
}

func Example() {
	reg := mediator.NewRegistry()
	mediator.MustRegister(reg, &CreateUserHandler{})

	m := mediator.New(reg)

	res, err := m.Send(context.Background(), CreateUser{Name: "Ann"})
	if err != nil {
		fmt.Println("not wired:", err)
		return
	}
	fmt.Println(res)

	// Output:
	// Creating user: Ann
	// Ok(42)
}

func Example_behaviorOrder() {
	reg := mediator.NewRegistry()
	_ = mediator.RegisterFunc(reg, func(ctx context.Context, q GetUser) (string, error) {
		fmt.Println("handler")
		return "Ann", nil
	})

	trace := func(name string) mediator.Behavior {
		return mediator.BehaviorFunc(func(ctx context.Context, msg mediator.Message, next mediator.Next) (any, error) {
			fmt.Println(name, "enter")
			defer fmt.Println(name, "exit")
			return next(ctx, msg)
		})
	}

	m := mediator.New(reg)
	m.Use(trace("outer"), trace("inner"))

	_, _ = m.Ask(context.Background(), GetUser{ID: 1})

	// Output:
	// outer enter
	// inner enter
	// handler
	// inner exit
	// outer exit
}

func Example_shortCircuit() {
	reg := mediator.NewRegistry()
	_ = mediator.RegisterFunc(reg, func(ctx context.Context, q GetUser) (string, error) {
		fmt.Println("never printed")
		return "", nil
	})

	m := mediator.New(reg)
	m.Use(mediator.BehaviorFunc(func(ctx context.Context, msg mediator.Message, next mediator.Next) (any, error) {
		return mediator.Fail[any](mediator.CodeForbidden), nil
	}))

	res, _ := m.Ask(context.Background(), GetUser{ID: 1})
	fmt.Println(res.MustCode())

	// Output:
	// FORBIDDEN
}

func Example_failures() {
	reg := mediator.NewRegistry()
	_ = mediator.RegisterFunc(reg, func(ctx context.Context, q GetUser) (string, error) {
		return "", mediator.NotFound("user %d", q.ID)
	})

	m := mediator.New(reg)

	res, _ := m.Ask(context.Background(), GetUser{ID: 99})
	fmt.Println(res.Success(), res.MustCode())
	fmt.Println(res.Err())

	_, err := m.Send(context.Background(), CreateUser{})
	fmt.Println(err)

	// Output:
	// false NOT_FOUND
	// NOT_FOUND: user 99
	// handler not found for mediator_test.CreateUser
}

func ExampleDispatchAs() {
	reg := mediator.NewRegistry()
	mediator.MustRegister(reg, &CreateUserHandler{})
	m := mediator.New(reg)

	res, _ := mediator.DispatchAs[UserID](context.Background(), m, CreateUser{Name: "Bob"})
	id, _ := res.Value()
	fmt.Println(id + 1)

	// Output:
	// Creating user: Bob
	// 43
}
