package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/nicholas-fedor/cup/pkg/types"
	"github.com/nicholas-fedor/cup/pkg/version"
)

// Registry is a mock type for the Registry type.
type Registry struct {
	mock.Mock
}

// Digest provides a mock function with given fields: ctx, parts, token.
func (_m *Registry) Digest(ctx context.Context, parts types.Parts, token string) (string, error) {
	ret := _m.Called(ctx, parts, token)

	var result0 string
	if rf, ok := ret.Get(0).(func(context.Context, types.Parts, string) string); ok {
		result0 = rf(ctx, parts, token)
	} else {
		result0 = ret.Get(0).(string)
	}

	return result0, ret.Error(1)
}

// LatestTag provides a mock function with given fields: ctx, parts, token, strategy, local.
func (_m *Registry) LatestTag(
	ctx context.Context,
	parts types.Parts,
	token string,
	strategy version.Strategy,
	local version.Tag,
) (version.Tag, bool, error) {
	ret := _m.Called(ctx, parts, token, strategy, local)

	var result0 version.Tag
	if rf, ok := ret.Get(0).(func(context.Context, types.Parts, string, version.Strategy, version.Tag) version.Tag); ok {
		result0 = rf(ctx, parts, token, strategy, local)
	} else {
		result0 = ret.Get(0).(version.Tag)
	}

	return result0, ret.Bool(1), ret.Error(2)
}

// NewRegistry creates a new instance of Registry and registers cleanup with the test.
func NewRegistry(t interface {
	mock.TestingT
	Cleanup(fn func())
},
) *Registry {
	m := &Registry{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
