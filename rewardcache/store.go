package rewardcache

import (
	"context"
	"sync"
)

// Store persists the advisory set of channel ids already rewarded to a
// user. The ledger remains the source of truth; this set only saves the
// reconciler redundant issuance calls between polls.
type Store interface {
	Load(ctx context.Context, userEmail string) ([]string, error)
	Add(ctx context.Context, userEmail string, channelIDs ...string) error
	Clear(ctx context.Context, userEmail string) error
}

// MemoryStore is an in-process Store. Used in tests and as the fallback
// when no Redis address is configured.
type MemoryStore struct {
	mu   sync.Mutex
	sets map[string]map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sets: make(map[string]map[string]struct{})}
}

func (s *MemoryStore) Load(_ context.Context, userEmail string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id := range s.sets[userEmail] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemoryStore) Add(_ context.Context, userEmail string, channelIDs ...string) error {
	if len(channelIDs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sets[userEmail]
	if !ok {
		set = make(map[string]struct{})
		s.sets[userEmail] = set
	}
	for _, id := range channelIDs {
		set[id] = struct{}{}
	}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, userEmail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sets, userEmail)
	return nil
}
