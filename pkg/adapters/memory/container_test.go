package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dexxiez/analog-nest-rpc/pkg/domain"
	"github.com/dexxiez/analog-nest-rpc/pkg/ports"
)

type counter struct{ n int }

func TestResolveLifetimes(t *testing.T) {
	c := NewContainer()
	built := map[string]int{}

	c.Provide("single", Singleton, func(ctx context.Context, res ports.Resolver) (any, error) {
		built["single"]++
		return &counter{}, nil
	})
	c.Provide("scoped", Scoped, func(ctx context.Context, res ports.Resolver) (any, error) {
		built["scoped"]++
		return &counter{}, nil
	})
	c.Provide("transient", Transient, func(ctx context.Context, res ports.Resolver) (any, error) {
		built["transient"]++
		return &counter{}, nil
	})

	ctx := context.Background()
	scopeA := c.Scope(domain.NewScopeID(), nil)
	scopeB := c.Scope(domain.NewScopeID(), nil)

	sa1, err := scopeA.Resolve(ctx, "single")
	require.NoError(t, err)
	sb1, err := scopeB.Resolve(ctx, "single")
	require.NoError(t, err)
	assert.Same(t, sa1, sb1, "singletons are shared across scopes")
	assert.Equal(t, 1, built["single"])

	ca1, err := scopeA.Resolve(ctx, "scoped")
	require.NoError(t, err)
	ca2, err := scopeA.Resolve(ctx, "scoped")
	require.NoError(t, err)
	cb1, err := scopeB.Resolve(ctx, "scoped")
	require.NoError(t, err)
	assert.Same(t, ca1, ca2, "scoped instances are cached per scope")
	assert.NotSame(t, ca1, cb1, "scoped instances are not shared across scopes")
	assert.Equal(t, 2, built["scoped"])

	t1, err := scopeA.Resolve(ctx, "transient")
	require.NoError(t, err)
	t2, err := scopeA.Resolve(ctx, "transient")
	require.NoError(t, err)
	assert.NotSame(t, t1, t2)
}

func TestResolveUnknownName(t *testing.T) {
	c := NewContainer()
	res := c.Scope(domain.NewScopeID(), nil)

	_, err := res.Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, ports.ErrNotProvided)
}

func TestScopeCarriesRequest(t *testing.T) {
	c := NewContainer()
	req := &domain.RequestInfo{Method: "POST", Path: "/api/_nest_rpc"}

	res := c.Scope(domain.NewScopeID(), req)
	assert.Same(t, req, res.Request())

	other := c.Scope(domain.NewScopeID(), nil)
	assert.Nil(t, other.Request())
}

func TestProviderErrorPropagates(t *testing.T) {
	c := NewContainer()
	boom := errors.New("boom")
	c.Provide("bad", Scoped, func(ctx context.Context, res ports.Resolver) (any, error) {
		return nil, boom
	})

	res := c.Scope(domain.NewScopeID(), nil)
	_, err := res.Resolve(context.Background(), "bad")
	assert.ErrorIs(t, err, boom)
}

type closeTracker struct{ closed bool }

func (c *closeTracker) Close(ctx context.Context) error {
	c.closed = true
	return nil
}

func TestCloseShutsDownSingletons(t *testing.T) {
	c := NewContainer()
	tracker := &closeTracker{}
	c.ProvideValue("resource", tracker)

	res := c.Scope(domain.NewScopeID(), nil)
	_, err := res.Resolve(context.Background(), "resource")
	require.NoError(t, err)

	require.NoError(t, c.Close(context.Background()))
	assert.True(t, tracker.closed)
}

func TestReplayStore(t *testing.T) {
	s := NewReplayStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ports.ErrReplayMiss)

	require.NoError(t, s.Set(ctx, "k", []byte("result")))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("result"), got)
}
