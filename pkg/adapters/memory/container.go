// Package memory provides in-memory reference implementations of the
// container and replay-store ports. The real dependency container is an
// external collaborator; this one backs tests, examples, and small
// deployments.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/dexxiez/analog-nest-rpc/pkg/domain"
	"github.com/dexxiez/analog-nest-rpc/pkg/ports"
)

// Lifetime controls how long a provided instance lives.
type Lifetime int

const (
	// Singleton instances are shared process-wide.
	Singleton Lifetime = iota
	// Scoped instances are unique per invocation scope.
	Scoped
	// Transient instances are built on every resolution.
	Transient
)

// Provider builds an instance. It may resolve its own dependencies through
// the given resolver (same scope).
type Provider func(ctx context.Context, res ports.Resolver) (any, error)

// Closer is implemented by singletons that hold resources.
type Closer interface {
	Close(ctx context.Context) error
}

type providerEntry struct {
	build    Provider
	lifetime Lifetime
}

type scopeState struct {
	mu        sync.Mutex
	req       *domain.RequestInfo
	instances map[string]any
}

// Container is a string-token container with singleton/scoped/transient
// lifetimes and per-scope request binding.
type Container struct {
	mu         sync.RWMutex
	providers  map[string]providerEntry
	singletons map[string]any
	scopes     map[domain.ScopeID]*scopeState
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{
		providers:  make(map[string]providerEntry),
		singletons: make(map[string]any),
		scopes:     make(map[domain.ScopeID]*scopeState),
	}
}

// Provide registers a provider under name. Later registrations replace
// earlier ones; registration is expected to finish before serving traffic.
func (c *Container) Provide(name string, lifetime Lifetime, build Provider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.providers[name] = providerEntry{build: build, lifetime: lifetime}
}

// ProvideValue registers an already-built shared instance.
func (c *Container) ProvideValue(name string, value any) {
	c.Provide(name, Singleton, func(ctx context.Context, res ports.Resolver) (any, error) {
		return value, nil
	})
}

// Scope opens a resolution scope and binds the request view to it.
func (c *Container) Scope(id domain.ScopeID, req *domain.RequestInfo) ports.Resolver {
	state := &scopeState{req: req, instances: make(map[string]any)}
	c.mu.Lock()
	c.scopes[id] = state
	c.mu.Unlock()
	return &scopeResolver{container: c, state: state}
}

// Release drops all instances cached for the scope.
func (c *Container) Release(id domain.ScopeID) {
	c.mu.Lock()
	delete(c.scopes, id)
	c.mu.Unlock()
}

// Close tears down singletons that hold resources.
func (c *Container) Close(ctx context.Context) error {
	c.mu.Lock()
	singletons := c.singletons
	c.singletons = make(map[string]any)
	c.mu.Unlock()

	for name, inst := range singletons {
		if closer, ok := inst.(Closer); ok {
			if err := closer.Close(ctx); err != nil {
				return fmt.Errorf("close %s: %w", name, err)
			}
		}
	}
	return nil
}

type scopeResolver struct {
	container *Container
	state     *scopeState
}

func (r *scopeResolver) Request() *domain.RequestInfo {
	return r.state.req
}

func (r *scopeResolver) Resolve(ctx context.Context, name string) (any, error) {
	c := r.container

	c.mu.RLock()
	entry, ok := c.providers[name]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrNotProvided, name)
	}

	switch entry.lifetime {
	case Singleton:
		c.mu.RLock()
		inst, cached := c.singletons[name]
		c.mu.RUnlock()
		if cached {
			return inst, nil
		}
		built, err := entry.build(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", name, err)
		}
		c.mu.Lock()
		// Another scope may have won the race; keep the first instance.
		if inst, cached := c.singletons[name]; cached {
			c.mu.Unlock()
			return inst, nil
		}
		c.singletons[name] = built
		c.mu.Unlock()
		return built, nil

	case Scoped:
		r.state.mu.Lock()
		if inst, cached := r.state.instances[name]; cached {
			r.state.mu.Unlock()
			return inst, nil
		}
		r.state.mu.Unlock()

		built, err := entry.build(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", name, err)
		}

		r.state.mu.Lock()
		if inst, cached := r.state.instances[name]; cached {
			r.state.mu.Unlock()
			return inst, nil
		}
		r.state.instances[name] = built
		r.state.mu.Unlock()
		return built, nil

	default: // Transient
		built, err := entry.build(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", name, err)
		}
		return built, nil
	}
}
