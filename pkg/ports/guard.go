package ports

import (
	"context"

	"github.com/dexxiez/analog-nest-rpc/pkg/domain"
)

// Guard is an authorization capability evaluated before invocation.
// A false verdict or an error denies the call.
type Guard interface {
	CanActivate(ctx context.Context, ec *domain.ExecutionContext) (bool, error)
}

// GuardFunc adapts a plain function to the Guard interface.
type GuardFunc func(ctx context.Context, ec *domain.ExecutionContext) (bool, error)

func (f GuardFunc) CanActivate(ctx context.Context, ec *domain.ExecutionContext) (bool, error) {
	return f(ctx, ec)
}
