// Package binding maps declared argument slots of an operation to values
// drawn from the execution context, custom extractors, and the
// caller-supplied argument list.
package binding

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/dexxiez/analog-nest-rpc/pkg/domain"
)

// Bind produces the final ordered argument list for an invocation.
//
// With no declared bindings the caller arguments pass through unchanged.
// Otherwise declared slots are filled from their source, undeclared slots
// are filled from caller arguments in ascending index order, and any caller
// arguments left over are appended at the end (preserving variadic-style
// calls).
func Bind(ctx context.Context, action *domain.ActionDescriptor, ec *domain.ExecutionContext, callerArgs []any) ([]any, error) {
	if len(action.Params) == 0 {
		return callerArgs, nil
	}

	maxIndex := 0
	declared := make(map[int]domain.ParamBindingSpec, len(action.Params))
	for _, spec := range action.Params {
		declared[spec.Index] = spec
		if spec.Index > maxIndex {
			maxIndex = spec.Index
		}
	}

	out := make([]any, maxIndex+1)
	remaining := callerArgs

	for i := 0; i <= maxIndex; i++ {
		spec, ok := declared[i]
		if !ok {
			// Undeclared slot: consume the next caller argument, if any.
			if len(remaining) > 0 {
				out[i] = remaining[0]
				remaining = remaining[1:]
			}
			continue
		}
		switch spec.Source {
		case domain.SourceCustom:
			v, err := spec.Extract(ctx, spec.Config, ec)
			if err != nil {
				return nil, fmt.Errorf("extract param %d of %s.%s: %w", i, ec.Target, ec.Action, err)
			}
			out[i] = v
		case domain.SourceRequest:
			if ec.Request != nil {
				out[i] = ec.Request
			}
		default:
			// Reserved contextual sources resolve to no value.
		}
	}

	// Variadic tail: surplus caller arguments keep their original order.
	out = append(out, remaining...)
	return out, nil
}

// DecodeConfig decodes an extractor's opaque configuration into a typed
// struct, so extractors registered with map-shaped config stay ergonomic.
func DecodeConfig(config any, out any) error {
	if config == nil {
		return nil
	}
	if err := mapstructure.Decode(config, out); err != nil {
		return fmt.Errorf("decode extractor config: %w", err)
	}
	return nil
}
