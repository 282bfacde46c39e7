// Package guard evaluates the authorization chain attached to a
// remote-callable operation. Evaluation is a security boundary: any
// ambiguity (unresolvable guard, wrong type, guard error) denies the call
// rather than bypassing it.
package guard

import (
	"context"

	"github.com/dexxiez/analog-nest-rpc/pkg/domain"
	"github.com/dexxiez/analog-nest-rpc/pkg/ports"
)

// Evaluate runs class-level guards then method-level guards, in declaration
// order, short-circuiting on the first denial. Each guard is resolved
// within the call's scope so request-scoped guards observe the current
// request. Returns nil when every guard passes.
func Evaluate(ctx context.Context, res ports.Resolver, target *domain.TargetDescriptor, action *domain.ActionDescriptor, ec *domain.ExecutionContext) error {
	specs := make([]domain.GuardSpec, 0, len(target.Guards)+len(action.Guards))
	specs = append(specs, target.Guards...)
	specs = append(specs, action.Guards...)

	for _, spec := range specs {
		inst, err := res.Resolve(ctx, spec.Name)
		if err != nil {
			// Fail closed. Skipping an unresolvable guard would bypass
			// authorization; leaking the resolution error would disclose
			// container wiring.
			return &domain.UnauthorizedError{Guard: spec.Name, Reason: "guard could not be resolved"}
		}
		g, ok := inst.(ports.Guard)
		if !ok {
			return &domain.UnauthorizedError{Guard: spec.Name, Reason: "resolved value is not a guard"}
		}
		allowed, err := g.CanActivate(ctx, ec)
		if err != nil {
			return &domain.UnauthorizedError{Guard: spec.Name, Reason: "authorization check failed"}
		}
		if !allowed {
			return &domain.UnauthorizedError{Guard: spec.Name}
		}
	}
	return nil
}
