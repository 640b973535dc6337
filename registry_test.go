package mediator

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
)

type createUser struct {
	Name string
}

type getUser struct {
	ID int
}

type RegistrySuite struct {
	suite.Suite
	reg *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.reg = NewRegistry()
}

func (s *RegistrySuite) TestRegisterAndResolve() {
	err := RegisterFunc(s.reg, func(ctx context.Context, c createUser) (userID, error) {
		return 42, nil
	})
	s.Require().NoError(err)

	inv, err := s.reg.Resolve(reflect.TypeOf(createUser{}))
	s.Require().NoError(err)

	out, err := inv(context.Background(), createUser{Name: "Ann"})
	s.NoError(err)
	s.Equal(userID(42), out)
}

func (s *RegistrySuite) TestDuplicateRegistrationKeepsOriginal() {
	s.Require().NoError(RegisterFunc(s.reg, func(ctx context.Context, c createUser) (string, error) {
		return "first", nil
	}))

	err := RegisterFunc(s.reg, func(ctx context.Context, c createUser) (string, error) {
		return "second", nil
	})

	s.ErrorIs(err, ErrDuplicateRegistration)
	var regErr *RegistrationError
	s.Require().ErrorAs(err, &regErr)
	s.Equal(reflect.TypeOf(createUser{}), regErr.Type)

	inv, err := s.reg.Resolve(reflect.TypeOf(createUser{}))
	s.Require().NoError(err)
	out, _ := inv(context.Background(), createUser{})
	s.Equal("first", out)
}

func (s *RegistrySuite) TestDuplicateAcrossResponseTypes() {
	s.Require().NoError(RegisterFunc(s.reg, func(ctx context.Context, c createUser) (string, error) {
		return "", nil
	}))

	err := RegisterFunc(s.reg, func(ctx context.Context, c createUser) (int, error) {
		return 0, nil
	})

	s.ErrorIs(err, ErrDuplicateRegistration)
}

func (s *RegistrySuite) TestPointerAndValueAreDistinct() {
	s.Require().NoError(RegisterFunc(s.reg, func(ctx context.Context, c createUser) (string, error) {
		return "value", nil
	}))
	s.Require().NoError(RegisterFunc(s.reg, func(ctx context.Context, c *createUser) (string, error) {
		return "pointer", nil
	}))

	s.Equal(2, s.reg.Len())
	s.True(s.reg.Has(&createUser{}))
	s.True(s.reg.Has(createUser{}))
}

func (s *RegistrySuite) TestResolveMissing() {
	_, err := s.reg.Resolve(reflect.TypeOf(getUser{}))

	s.ErrorIs(err, ErrHandlerNotFound)
	var nf *NotFoundError
	s.Require().ErrorAs(err, &nf)
	s.Contains(nf.Error(), "getUser")
}

func (s *RegistrySuite) TestRejectsInterfaceMessage() {
	err := RegisterFunc(s.reg, func(ctx context.Context, m fmt.Stringer) (string, error) {
		return "", nil
	})

	s.Error(err)
	s.Zero(s.reg.Len())
}

func (s *RegistrySuite) TestMustRegisterPanicsOnDuplicate() {
	h := HandlerFunc[getUser, string](func(ctx context.Context, q getUser) (string, error) {
		return "", nil
	})
	MustRegister(s.reg, h)

	s.Panics(func() {
		MustRegister(s.reg, h)
	})
}

func (s *RegistrySuite) TestTypesSortedByName() {
	s.Require().NoError(RegisterFunc(s.reg, func(ctx context.Context, q getUser) (string, error) { return "", nil }))
	s.Require().NoError(RegisterFunc(s.reg, func(ctx context.Context, c createUser) (string, error) { return "", nil }))

	types := s.reg.Types()

	s.Require().Len(types, 2)
	s.Equal("mediator.createUser", types[0].String())
	s.Equal("mediator.getUser", types[1].String())
}

func (s *RegistrySuite) TestZeroValueUsable() {
	var reg Registry

	s.False(reg.Has(createUser{}))
	s.NoError(RegisterFunc(&reg, func(ctx context.Context, c createUser) (string, error) { return "", nil }))
	s.True(reg.Has(createUser{}))
}

type concurrentMsg[T any] struct{ v T }

func (s *RegistrySuite) TestConcurrentRegistrationAndLookup() {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		_ = RegisterFunc(s.reg, func(ctx context.Context, m concurrentMsg[int]) (int, error) { return 0, nil })
	}()
	go func() {
		defer wg.Done()
		_ = RegisterFunc(s.reg, func(ctx context.Context, m concurrentMsg[string]) (int, error) { return 0, nil })
	}()
	go func() {
		defer wg.Done()
		for range 100 {
			s.reg.Has(concurrentMsg[int]{})
		}
	}()
	wg.Wait()

	s.Equal(2, s.reg.Len())
}
