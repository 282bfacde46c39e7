package ports

import (
	"context"
	"errors"
)

// ErrReplayMiss is returned by ReplayStore.Get when no result is cached
// under the given key.
var ErrReplayMiss = errors.New("replay cache miss")

// ReplayStore caches successful invocation results keyed by the caller's
// idempotency key, so retried deliveries of the same call are answered
// without re-running the handler.
type ReplayStore interface {
	// Get returns the cached result bytes for key, or ErrReplayMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores the result bytes for key.
	Set(ctx context.Context, key string, result []byte) error
}

// ShutdownRegistrar accepts teardown hooks from the environment manager.
// The application lifecycle (HTTP server, CLI) invokes registered hooks
// exactly once on shutdown.
type ShutdownRegistrar func(hook func(ctx context.Context) error)
