package mediator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userID int

func TestResult_Ok(t *testing.T) {
	t.Run("is a success", func(t *testing.T) {
		r := Ok(userID(42))
		assert.True(t, r.Success())
	})

	t.Run("returns value", func(t *testing.T) {
		v, err := Ok(userID(42)).Value()
		require.NoError(t, err)
		assert.Equal(t, userID(42), v)
	})

	t.Run("has no code", func(t *testing.T) {
		_, err := Ok("x").Code()
		assert.ErrorIs(t, err, ErrNoCode)
	})

	t.Run("MustCode panics", func(t *testing.T) {
		assert.PanicsWithError(t, ErrNoCode.Error(), func() {
			Ok("x").MustCode()
		})
	})

	t.Run("carries absent value for void operations", func(t *testing.T) {
		r := Ok[any](nil)
		assert.True(t, r.Success())
		v, err := r.Value()
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("has nil Err", func(t *testing.T) {
		assert.NoError(t, Ok(1).Err())
	})
}

func TestResult_Fail(t *testing.T) {
	t.Run("is not a success", func(t *testing.T) {
		assert.False(t, Fail[int](CodeNotFound).Success())
	})

	t.Run("returns code", func(t *testing.T) {
		c, err := Fail[int](CodeNotFound).Code()
		require.NoError(t, err)
		assert.Equal(t, CodeNotFound, c)
	})

	t.Run("has no value", func(t *testing.T) {
		v, err := Fail[int](CodeNotFound).Value()
		assert.ErrorIs(t, err, ErrNoValue)
		assert.Zero(t, v)
	})

	t.Run("MustValue panics", func(t *testing.T) {
		assert.Panics(t, func() {
			Fail[int]("X").MustValue()
		})
	})

	t.Run("Err carries code", func(t *testing.T) {
		err := Fail[int](CodeForbidden).Err()
		assert.ErrorIs(t, err, &Error{Code: CodeForbidden})
		assert.Equal(t, CodeForbidden, CodeOf(err))
	})

	t.Run("FailWith keeps cause", func(t *testing.T) {
		cause := errors.New("disk on fire")
		err := FailWith[int](CodeInternal, cause).Err()
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "disk on fire")
	})
}

func TestResult_Erase(t *testing.T) {
	t.Run("keeps success and value", func(t *testing.T) {
		r := Ok(userID(7)).Erase()
		assert.True(t, r.Success())
		assert.Equal(t, userID(7), r.MustValue())
	})

	t.Run("keeps failure code", func(t *testing.T) {
		r := Fail[userID]("GONE").Erase()
		assert.Equal(t, "GONE", r.MustCode())
	})
}

func TestAs(t *testing.T) {
	t.Run("converts matching value", func(t *testing.T) {
		r := As[userID](Ok[any](userID(3)))
		assert.Equal(t, userID(3), r.MustValue())
	})

	t.Run("mismatched value becomes failure", func(t *testing.T) {
		r := As[userID](Ok[any]("three"))
		assert.Equal(t, CodeTypeMismatch, r.MustCode())
	})

	t.Run("nil value converts to nilable type", func(t *testing.T) {
		r := As[*userID](Ok[any](nil))
		require.True(t, r.Success())
		assert.Nil(t, r.MustValue())
	})

	t.Run("nil value does not convert to value type", func(t *testing.T) {
		r := As[userID](Ok[any](nil))
		assert.False(t, r.Success())
	})

	t.Run("failure keeps code", func(t *testing.T) {
		r := As[userID](Fail[any](CodeNotFound))
		assert.Equal(t, CodeNotFound, r.MustCode())
	})
}

func TestResult_String(t *testing.T) {
	assert.Equal(t, "Ok(42)", Ok(42).String())
	assert.Equal(t, "Fail(NOT_FOUND)", Fail[int](CodeNotFound).String())
	assert.Equal(t, "Fail(INTERNAL_ERROR: boom)", FailWith[int](CodeInternal, errors.New("boom")).String())
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"coded error", NotFound("user %d", 1), CodeNotFound},
		{"wrapped coded error", errors.Join(errors.New("ctx"), Forbidden("no")), CodeForbidden},
		{"coder", codeErr("TEAPOT"), "TEAPOT"},
		{"panic", &PanicError{Value: "boom"}, CodePanic},
		{"panic with coded value", &PanicError{Value: NotFound("x")}, CodeNotFound},
		{"reinvoked next", ErrNextReinvoked, CodePipeline},
		{"plain error", errors.New("boom"), CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

type codeErr string

func (e codeErr) Error() string { return string(e) }
func (e codeErr) Code() string  { return string(e) }
