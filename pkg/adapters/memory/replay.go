package memory

import (
	"context"
	"sync"

	"github.com/dexxiez/analog-nest-rpc/pkg/ports"
)

// ReplayStore is an in-memory ports.ReplayStore for tests and single-node
// deployments.
type ReplayStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewReplayStore creates an empty store.
func NewReplayStore() *ReplayStore {
	return &ReplayStore{data: make(map[string][]byte)}
}

func (s *ReplayStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.data[key]
	if !ok {
		return nil, ports.ErrReplayMiss
	}
	out := make([]byte, len(result))
	copy(out, result)
	return out, nil
}

func (s *ReplayStore) Set(ctx context.Context, key string, result []byte) error {
	stored := make([]byte, len(result))
	copy(stored, result)
	s.mu.Lock()
	s.data[key] = stored
	s.mu.Unlock()
	return nil
}
