// Package testutils provides shared fixtures for pipeline tests.
package testutils

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/dexxiez/analog-nest-rpc/pkg/domain"
)

// CountingGuard is a guard fixture that records how often it ran.
type CountingGuard struct {
	Allow bool
	Calls atomic.Int32
}

func (g *CountingGuard) CanActivate(ctx context.Context, ec *domain.ExecutionContext) (bool, error) {
	g.Calls.Add(1)
	return g.Allow, nil
}

// Greeter is the canonical end-to-end target.
type Greeter struct{}

// GreeterDescriptor exposes Greeter.hello(name) returning "Hello, <name>".
// Guard specs, if given, attach at class level.
func GreeterDescriptor(guards ...domain.GuardSpec) *domain.TargetDescriptor {
	return &domain.TargetDescriptor{
		Name:   "Greeter",
		Guards: guards,
		Construct: func(ctx context.Context) (any, error) {
			return &Greeter{}, nil
		},
		Actions: map[string]*domain.ActionDescriptor{
			"hello": {
				Handler: func(ctx context.Context, receiver any, args []any) (any, error) {
					if len(args) == 0 {
						return nil, fmt.Errorf("hello requires a name")
					}
					name, ok := args[0].(string)
					if !ok {
						return nil, fmt.Errorf("hello requires a string name, got %T", args[0])
					}
					return "Hello, " + name, nil
				},
			},
		},
	}
}
