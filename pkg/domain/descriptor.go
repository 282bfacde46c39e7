package domain

import "context"

// HandlerFunc is the invocation shape for every remote-callable operation.
// The receiver is the instance resolved for this call's scope; args are the
// fully bound arguments in declaration order.
type HandlerFunc func(ctx context.Context, receiver any, args []any) (any, error)

// Factory constructs a fresh instance of a target class. It is the lenient
// fallback used when the container has no provider registered under the
// target's name (plain data/service classes without formal registration).
type Factory func(ctx context.Context) (any, error)

// ExtractorFunc computes the value for a single argument slot from the
// execution context plus the opaque configuration attached at registration.
type ExtractorFunc func(ctx context.Context, config any, ec *ExecutionContext) (any, error)

// ParamSource identifies where a declared argument slot draws its value.
type ParamSource string

const (
	// SourceRequest injects the adapted request view for the current call.
	SourceRequest ParamSource = "request"
	// SourceCustom invokes the slot's extractor with its config.
	SourceCustom ParamSource = "custom"
)

// ParamBindingSpec declares how one argument slot is filled. Slots with no
// spec are consumed from the caller-supplied argument list in index order.
type ParamBindingSpec struct {
	Index   int
	Source  ParamSource
	Extract ExtractorFunc // required when Source == SourceCustom
	Config  any           // opaque; passed to Extract unchanged
}

// GuardSpec names an authorization capability resolvable within a scope.
// The resolved instance must implement ports.Guard.
type GuardSpec struct {
	Name string
}

// ActionDescriptor identifies one remote-callable operation on a target.
// Immutable once registered.
type ActionDescriptor struct {
	Name    string
	Handler HandlerFunc
	Guards  []GuardSpec // method-level, declaration order
	Params  []ParamBindingSpec
}

// TargetDescriptor identifies a remote-callable class: its container token,
// an optional construct fallback, class-level guards, and its actions.
type TargetDescriptor struct {
	Name      string
	Construct Factory     // lenient-resolution fallback; may be nil
	Guards    []GuardSpec // class-level, declaration order; run before action guards
	Actions   map[string]*ActionDescriptor
}

// Action returns the named operation, or nil when the target does not
// expose it.
func (t *TargetDescriptor) Action(name string) *ActionDescriptor {
	if t == nil {
		return nil
	}
	return t.Actions[name]
}
