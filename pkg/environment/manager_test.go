package environment

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dexxiez/analog-nest-rpc/pkg/adapters/memory"
	"github.com/dexxiez/analog-nest-rpc/pkg/domain"
	"github.com/dexxiez/analog-nest-rpc/pkg/registry"
)

func testBuild(counter *atomic.Int32, delay time.Duration) BuildFunc {
	return func(ctx context.Context) (*Environment, error) {
		counter.Add(1)
		if delay > 0 {
			time.Sleep(delay)
		}
		return New(memory.NewContainer(), registry.New()), nil
	}
}

func TestEnsureReadyBuildsOnce(t *testing.T) {
	m := NewManager()
	var builds atomic.Int32

	env, err := m.EnsureReady(context.Background(), testBuild(&builds, 0))
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.Equal(t, StateReady, m.State())

	again, err := m.EnsureReady(context.Background(), testBuild(&builds, 0))
	require.NoError(t, err)
	assert.Same(t, env, again)
	assert.Equal(t, int32(1), builds.Load())
}

func TestEnsureReadyConcurrent(t *testing.T) {
	m := NewManager()
	var builds atomic.Int32
	build := testBuild(&builds, 20*time.Millisecond)

	const n = 32
	envs := make([]*Environment, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			envs[i], errs[i] = m.EnsureReady(context.Background(), build)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), builds.Load(), "build must run exactly once")
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, envs[0], envs[i], "all callers share one environment")
	}
}

func TestEnsureReadyFailureIsRetryable(t *testing.T) {
	m := NewManager()
	boom := errors.New("boom")
	attempts := 0

	build := func(ctx context.Context) (*Environment, error) {
		attempts++
		if attempts == 1 {
			return nil, boom
		}
		return New(memory.NewContainer(), registry.New()), nil
	}

	_, err := m.EnsureReady(context.Background(), build)
	require.Error(t, err)

	var bootErr *domain.BootstrapError
	require.ErrorAs(t, err, &bootErr)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateUninitialized, m.State())

	env, err := m.EnsureReady(context.Background(), build)
	require.NoError(t, err)
	assert.NotNil(t, env)
	assert.Equal(t, StateReady, m.State())
	assert.Equal(t, 2, attempts)
}

func TestConcurrentCallersShareFailure(t *testing.T) {
	m := NewManager()
	boom := errors.New("boom")
	build := func(ctx context.Context) (*Environment, error) {
		time.Sleep(20 * time.Millisecond)
		return nil, boom
	}

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.EnsureReady(context.Background(), build)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		assert.ErrorIs(t, errs[i], boom)
	}
}

func TestShutdownHookRegisteredOncePerBootstrap(t *testing.T) {
	var hooks []func(ctx context.Context) error
	m := NewManager(WithShutdownRegistrar(func(hook func(ctx context.Context) error) {
		hooks = append(hooks, hook)
	}))
	var builds atomic.Int32

	_, err := m.EnsureReady(context.Background(), testBuild(&builds, 0))
	require.NoError(t, err)
	_, err = m.EnsureReady(context.Background(), testBuild(&builds, 0))
	require.NoError(t, err)
	require.Len(t, hooks, 1)

	// The hook closes the environment and resets the manager.
	require.NoError(t, hooks[0](context.Background()))
	assert.Equal(t, StateUninitialized, m.State())

	// A fresh bootstrap after teardown registers a new hook.
	_, err = m.EnsureReady(context.Background(), testBuild(&builds, 0))
	require.NoError(t, err)
	assert.Len(t, hooks, 2)
	assert.Equal(t, int32(2), builds.Load())
}

func TestWaiterHonorsContextCancellation(t *testing.T) {
	m := NewManager()
	release := make(chan struct{})
	build := func(ctx context.Context) (*Environment, error) {
		<-release
		return New(memory.NewContainer(), registry.New()), nil
	}

	started := make(chan struct{})
	go func() {
		close(started)
		_, _ = m.EnsureReady(context.Background(), build)
	}()
	<-started
	// Give the builder goroutine time to publish the pending handle.
	require.Eventually(t, func() bool {
		return m.State() == StateBootstrapping
	}, time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.EnsureReady(ctx, build)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
}

func TestEnvironmentCloseRunsClosers(t *testing.T) {
	env := New(memory.NewContainer(), registry.New())
	closed := false
	env.OnClose(func(ctx context.Context) error {
		closed = true
		return nil
	})

	require.NoError(t, env.Close(context.Background()))
	assert.True(t, closed)
}
