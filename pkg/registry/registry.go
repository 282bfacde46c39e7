// Package registry holds the descriptor table mapping controller names to
// their remote-callable operations. It is populated once at startup by the
// external registration step and read-only afterwards.
package registry

import (
	"fmt"
	"sync"

	"github.com/dexxiez/analog-nest-rpc/pkg/domain"
)

// Registry manages the registered targets.
type Registry struct {
	mu      sync.RWMutex
	targets map[string]*domain.TargetDescriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		targets: make(map[string]*domain.TargetDescriptor),
	}
}

// Register adds a target descriptor. Descriptors are immutable once
// registered; re-registering a name is rejected.
func (r *Registry) Register(td *domain.TargetDescriptor) error {
	if td == nil || td.Name == "" {
		return fmt.Errorf("target descriptor requires a name")
	}
	for name, action := range td.Actions {
		if action == nil || action.Handler == nil {
			return fmt.Errorf("target %s: action %s has no handler", td.Name, name)
		}
		if action.Name == "" {
			action.Name = name
		}
		seen := make(map[int]struct{}, len(action.Params))
		for _, p := range action.Params {
			if p.Index < 0 {
				return fmt.Errorf("target %s: action %s: negative param index %d", td.Name, name, p.Index)
			}
			if _, dup := seen[p.Index]; dup {
				return fmt.Errorf("target %s: action %s: duplicate param index %d", td.Name, name, p.Index)
			}
			seen[p.Index] = struct{}{}
			if p.Source == domain.SourceCustom && p.Extract == nil {
				return fmt.Errorf("target %s: action %s: custom param %d has no extractor", td.Name, name, p.Index)
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.targets[td.Name]; exists {
		return fmt.Errorf("target already registered: %s", td.Name)
	}
	r.targets[td.Name] = td
	return nil
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (*domain.TargetDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	td, ok := r.targets[name]
	return td, ok
}

// Action resolves target + operation in one step.
func (r *Registry) Action(target, action string) (*domain.TargetDescriptor, *domain.ActionDescriptor, error) {
	td, ok := r.Lookup(target)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrTargetNotFound, target)
	}
	ad := td.Action(action)
	if ad == nil || ad.Handler == nil {
		return nil, nil, fmt.Errorf("%w: %s.%s", domain.ErrHandlerNotFound, target, action)
	}
	return td, ad, nil
}

// Targets returns the registered controller names.
func (r *Registry) Targets() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.targets))
	for name := range r.targets {
		names = append(names, name)
	}
	return names
}
