// Package invoke contains the per-call orchestrator: it mints an isolated
// scope, resolves the target, runs the guard chain and the parameter
// binder, and invokes the handler. Each call is independent; nothing
// survives past the invocation.
package invoke

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dexxiez/analog-nest-rpc/internal/logging"
	"github.com/dexxiez/analog-nest-rpc/pkg/binding"
	"github.com/dexxiez/analog-nest-rpc/pkg/codec"
	"github.com/dexxiez/analog-nest-rpc/pkg/domain"
	"github.com/dexxiez/analog-nest-rpc/pkg/environment"
	"github.com/dexxiez/analog-nest-rpc/pkg/guard"
	"github.com/dexxiez/analog-nest-rpc/pkg/observability"
	"github.com/dexxiez/analog-nest-rpc/pkg/ports"
)

// Orchestrator runs the invocation pipeline against a ready environment.
type Orchestrator struct {
	logger  *slog.Logger
	metrics *observability.Metrics
	replay  ports.ReplayStore
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithReplayStore enables idempotency replay: calls carrying an
// Idempotency-Key are answered from the cache on redelivery.
func WithReplayStore(store ports.ReplayStore) Option {
	return func(o *Orchestrator) {
		o.replay = store
	}
}

// New creates an Orchestrator.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Invoke executes one remote call. Steps are strictly ordered: mint scope,
// bind request into scope, resolve target (lenient), look up handler, run
// guards, bind parameters, invoke. Handler results and failures propagate
// unchanged; pipeline failures carry the taxonomy errors.
func (o *Orchestrator) Invoke(ctx context.Context, env *environment.Environment, target, action string, callerArgs []any, req *domain.RequestInfo) (any, error) {
	start := time.Now()
	result, outcome, err := o.invoke(ctx, env, target, action, callerArgs, req)
	o.metrics.ObserveInvocation(target, action, outcome, time.Since(start))
	return result, err
}

func (o *Orchestrator) invoke(ctx context.Context, env *environment.Environment, target, action string, callerArgs []any, req *domain.RequestInfo) (any, string, error) {
	td, ad, err := env.Registry.Action(target, action)
	if err != nil {
		o.logger.Debug("unknown operation", "controller", target, "action", action)
		return nil, observability.OutcomeNotFound, err
	}

	scope := domain.NewScopeID()
	res := env.Container.Scope(scope, req)
	defer env.Container.Release(scope)

	log := o.logger.With("controller", target, "action", action, "scope", string(scope))
	log.Debug("invoking")

	instance, err := o.resolveTarget(ctx, res, td)
	if err != nil {
		log.Warn("target resolution failed", "error", err)
		// Resolution internals stay private; the caller learns only that
		// the call was not authorized to proceed.
		return nil, observability.OutcomeUnauthorized,
			&domain.UnauthorizedError{Guard: target, Reason: "target could not be resolved"}
	}

	ec := &domain.ExecutionContext{
		Target:  td.Name,
		Action:  ad.Name,
		Handler: ad.Handler,
		Scope:   scope,
		Request: req,
	}

	if err := guard.Evaluate(ctx, res, td, ad, ec); err != nil {
		log.Warn("call denied", "error", err)
		return nil, observability.OutcomeUnauthorized, err
	}

	args, err := binding.Bind(ctx, ad, ec, callerArgs)
	if err != nil {
		return nil, observability.OutcomeError, err
	}

	if replayed, ok := o.fromReplay(ctx, req, log); ok {
		return replayed, observability.OutcomeReplayed, nil
	}

	result, err := ad.Handler(ctx, instance, args)
	if err != nil {
		// The handler's own error contract is preserved end to end.
		return nil, observability.OutcomeError, err
	}

	o.toReplay(ctx, req, result, log)
	return result, observability.OutcomeOK, nil
}

// resolveTarget resolves the target instance leniently: a registered
// provider wins, the descriptor's construct fallback covers plain classes,
// and a target with neither yields a nil receiver (handlers that carry
// their own state ignore it).
func (o *Orchestrator) resolveTarget(ctx context.Context, res ports.Resolver, td *domain.TargetDescriptor) (any, error) {
	instance, err := res.Resolve(ctx, td.Name)
	if err == nil {
		return instance, nil
	}
	if !errors.Is(err, ports.ErrNotProvided) {
		return nil, err
	}
	if td.Construct != nil {
		return td.Construct(ctx)
	}
	return nil, nil
}

func (o *Orchestrator) fromReplay(ctx context.Context, req *domain.RequestInfo, log *slog.Logger) (any, bool) {
	if o.replay == nil || req == nil || req.IdempotencyKey == "" {
		return nil, false
	}
	cached, err := o.replay.Get(ctx, req.IdempotencyKey)
	if err != nil {
		if !errors.Is(err, ports.ErrReplayMiss) {
			log.Warn("replay lookup failed", "error", err)
		}
		return nil, false
	}
	result, err := codec.Decode(cached)
	if err != nil {
		log.Warn("replay entry undecodable", "error", err)
		return nil, false
	}
	log.Debug("answered from replay cache", "key", req.IdempotencyKey)
	return result, true
}

func (o *Orchestrator) toReplay(ctx context.Context, req *domain.RequestInfo, result any, log *slog.Logger) {
	if o.replay == nil || req == nil || req.IdempotencyKey == "" {
		return
	}
	encoded, err := codec.Encode(result)
	if err != nil {
		// Result shapes outside the codec universe simply skip the cache.
		return
	}
	if err := o.replay.Set(ctx, req.IdempotencyKey, encoded); err != nil {
		log.Warn("replay store failed", "error", err)
	}
}
