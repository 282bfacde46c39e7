// Package environment owns the process-wide shared context that hosts
// remote-callable targets: the resolved container plus the descriptor
// registry. The Manager guarantees at-most-one concurrent bootstrap and
// exposes the environment read-only to every invocation.
package environment

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dexxiez/analog-nest-rpc/internal/logging"
	"github.com/dexxiez/analog-nest-rpc/pkg/domain"
	"github.com/dexxiez/analog-nest-rpc/pkg/ports"
	"github.com/dexxiez/analog-nest-rpc/pkg/registry"
)

// State describes the manager's lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateBootstrapping
	StateReady
)

func (s State) String() string {
	switch s {
	case StateBootstrapping:
		return "bootstrapping"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Environment is the shared object graph. Read-only after Ready.
type Environment struct {
	Container ports.Container
	Registry  *registry.Registry

	closers []func(ctx context.Context) error
}

// New assembles an environment from its two collaborators.
func New(container ports.Container, reg *registry.Registry) *Environment {
	return &Environment{Container: container, Registry: reg}
}

// OnClose appends a teardown function run by Close, before the container
// itself is closed. Must only be called during bootstrap.
func (e *Environment) OnClose(fn func(ctx context.Context) error) {
	e.closers = append(e.closers, fn)
}

// Close tears the environment down: registered closers first, then the
// container. All errors are joined.
func (e *Environment) Close(ctx context.Context) error {
	var errs []error
	for _, fn := range e.closers {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if e.Container != nil {
		if err := e.Container.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildFunc produces a ready environment. Invoked at most once per
// bootstrap attempt.
type BuildFunc func(ctx context.Context) (*Environment, error)

// pending is the shared handle for one in-flight bootstrap. Waiters block
// on done and then read env/err; both are written before done is closed.
type pending struct {
	done chan struct{}
	env  *Environment
	err  error
}

// Manager serializes environment bootstrap. The pending handle is the only
// mutable shared state: it is checked and published under mu before the
// build is awaited, so concurrent first callers join one build instead of
// starting their own.
type Manager struct {
	mu       sync.Mutex
	env      *Environment
	inflight *pending

	shutdown ports.ShutdownRegistrar
	logger   *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithShutdownRegistrar wires the external application lifecycle. One
// teardown hook is registered per successful bootstrap.
func WithShutdownRegistrar(reg ports.ShutdownRegistrar) Option {
	return func(m *Manager) {
		m.shutdown = reg
	}
}

// NewManager creates an uninitialized manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EnsureReady returns the shared environment, bootstrapping it on first
// use. Concurrent callers observe at most one build: whoever publishes the
// pending handle runs build, everyone else awaits the same handle. On
// failure only the pending handle is cleared, so the next call retries; a
// previously successful environment is never discarded by a failed attempt.
func (m *Manager) EnsureReady(ctx context.Context, build BuildFunc) (*Environment, error) {
	m.mu.Lock()
	if m.env != nil {
		env := m.env
		m.mu.Unlock()
		return env, nil
	}
	if p := m.inflight; p != nil {
		m.mu.Unlock()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-p.done:
			return p.env, p.err
		}
	}
	p := &pending{done: make(chan struct{})}
	m.inflight = p
	m.mu.Unlock()

	m.logger.Debug("bootstrapping execution environment")
	env, err := build(ctx)

	m.mu.Lock()
	m.inflight = nil
	if err != nil {
		m.mu.Unlock()
		p.err = &domain.BootstrapError{Err: err}
		close(p.done)
		m.logger.Error("environment bootstrap failed", "error", err)
		return nil, p.err
	}
	m.env = env
	m.mu.Unlock()

	if m.shutdown != nil {
		m.shutdown(m.Close)
	}
	m.logger.Info("execution environment ready")

	p.env = env
	close(p.done)
	return env, nil
}

// State reports the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.env != nil:
		return StateReady
	case m.inflight != nil:
		return StateBootstrapping
	default:
		return StateUninitialized
	}
}

// Close tears down the environment and resets the manager so a future
// bootstrap could occur. Safe to call when uninitialized.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	env := m.env
	m.env = nil
	m.inflight = nil
	m.mu.Unlock()

	if env == nil {
		return nil
	}
	m.logger.Info("closing execution environment")
	return env.Close(ctx)
}
