package ports

import (
	"context"
	"errors"

	"github.com/dexxiez/analog-nest-rpc/pkg/domain"
)

// ErrNotProvided is returned by a Resolver when no provider is registered
// under the requested name. The orchestrator uses it to decide whether
// lenient fallback construction applies; guard resolution treats it as a
// denial.
var ErrNotProvided = errors.New("no provider registered")

// Resolver resolves named instances within one invocation scope.
// Implementations must return the same instance for repeated resolutions of
// a scoped provider within the same scope.
type Resolver interface {
	// Resolve returns the instance registered under name for this scope.
	// Returns ErrNotProvided (possibly wrapped) when name is unknown.
	Resolve(ctx context.Context, name string) (any, error)

	// Request returns the inbound request bound to this scope, or nil.
	Request() *domain.RequestInfo
}

// Container is the dependency container consumed by the pipeline. Its
// resolution algorithm is external to this module; adapters/memory carries
// a reference implementation.
type Container interface {
	// Scope opens a resolution scope for one call and binds the request
	// view so providers resolved within it can observe the current request.
	Scope(id domain.ScopeID, req *domain.RequestInfo) Resolver

	// Release discards all per-scope instances. Called once per invocation
	// after the handler returns.
	Release(id domain.ScopeID)

	// Close tears down shared (singleton) instances.
	Close(ctx context.Context) error
}
