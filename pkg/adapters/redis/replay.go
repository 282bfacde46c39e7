// Package redis implements the replay-cache port on Redis, for deployments
// where idempotent calls must be deduplicated across instances.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/dexxiez/analog-nest-rpc/pkg/ports"
)

// ReplayStore implements ports.ReplayStore using Redis.
type ReplayStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*ReplayStore)

// WithTTL sets the expiration for cached results.
func WithTTL(ttl time.Duration) Option {
	return func(s *ReplayStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *ReplayStore) {
		s.prefix = prefix
	}
}

// New creates a Redis replay store with options.
func New(address, password string, db int, opts ...Option) *ReplayStore {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a replay store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *ReplayStore {
	store := &ReplayStore{
		client: client,
		prefix: "nestrpc:replay:",
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *ReplayStore) key(k string) string {
	return s.prefix + k
}

// Get returns the cached result bytes, or ports.ErrReplayMiss.
func (s *ReplayStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, ports.ErrReplayMiss
		}
		return nil, fmt.Errorf("replay get: %w", err)
	}
	return data, nil
}

// Set stores the result bytes under key with the configured TTL.
func (s *ReplayStore) Set(ctx context.Context, key string, result []byte) error {
	if err := s.client.Set(ctx, s.key(key), result, s.ttl).Err(); err != nil {
		return fmt.Errorf("replay set: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *ReplayStore) Close(ctx context.Context) error {
	return s.client.Close()
}
