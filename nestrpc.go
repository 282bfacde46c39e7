package nestrpc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dexxiez/analog-nest-rpc/internal/logging"
	"github.com/dexxiez/analog-nest-rpc/pkg/domain"
	"github.com/dexxiez/analog-nest-rpc/pkg/environment"
	"github.com/dexxiez/analog-nest-rpc/pkg/invoke"
	"github.com/dexxiez/analog-nest-rpc/pkg/observability"
	"github.com/dexxiez/analog-nest-rpc/pkg/ports"
)

// App is the server-side entry point. It owns the execution environment
// lifecycle and runs the invocation pipeline for every inbound call.
type App struct {
	build   environment.BuildFunc
	manager *environment.Manager
	orch    *invoke.Orchestrator

	logger   *slog.Logger
	metrics  *observability.Metrics
	replay   ports.ReplayStore
	shutdown ports.ShutdownRegistrar
}

// Option defines a functional option for configuring the App.
type Option func(*App)

// WithLogger sets a structured logger for the whole pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithMetrics enables Prometheus instrumentation on invocations.
func WithMetrics(m *observability.Metrics) Option {
	return func(a *App) {
		a.metrics = m
	}
}

// WithReplayStore enables idempotency replay for calls that carry an
// Idempotency-Key.
func WithReplayStore(store ports.ReplayStore) Option {
	return func(a *App) {
		a.replay = store
	}
}

// WithShutdownRegistrar wires environment teardown into the application
// lifecycle; the hook closes the environment exactly once.
func WithShutdownRegistrar(reg ports.ShutdownRegistrar) Option {
	return func(a *App) {
		a.shutdown = reg
	}
}

// New creates an App around an environment build function. The build runs
// lazily on the first invocation (or eagerly via Ready) and at most once
// concurrently.
func New(build environment.BuildFunc, opts ...Option) (*App, error) {
	if build == nil {
		return nil, fmt.Errorf("environment build function is required")
	}

	a := &App{build: build, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(a)
	}

	a.manager = environment.NewManager(
		environment.WithLogger(a.logger),
		environment.WithShutdownRegistrar(a.shutdown),
	)
	a.orch = invoke.New(
		invoke.WithLogger(a.logger),
		invoke.WithMetrics(a.metrics),
		invoke.WithReplayStore(a.replay),
	)
	return a, nil
}

// Invoke runs one call through the pipeline: ensure the environment is
// ready, then orchestrate scope, guards, binding, and the handler.
func (a *App) Invoke(ctx context.Context, target, action string, args []any, req *domain.RequestInfo) (any, error) {
	env, err := a.manager.EnsureReady(ctx, a.build)
	if err != nil {
		return nil, err
	}
	return a.orch.Invoke(ctx, env, target, action, args, req)
}

// Ready bootstraps the environment eagerly. Useful at server startup so
// the first caller does not pay the build.
func (a *App) Ready(ctx context.Context) error {
	_, err := a.manager.EnsureReady(ctx, a.build)
	return err
}

// State reports the environment lifecycle state.
func (a *App) State() environment.State {
	return a.manager.State()
}

// Close tears down the environment. Idempotent.
func (a *App) Close(ctx context.Context) error {
	return a.manager.Close(ctx)
}
