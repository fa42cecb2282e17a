package memory

import (
	"context"
	"sync"

	"interview-session-service/internal/domain"
)

// SnapshotStore is an in-memory implementation of app.SnapshotRepository.
// State survives presentation reloads but not a process restart.
type SnapshotStore struct {
	mu    sync.RWMutex
	state domain.State
	saves int
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// NewSnapshotStoreWith seeds the store, e.g. to simulate a reload in tests.
func NewSnapshotStoreWith(st domain.State) *SnapshotStore {
	return &SnapshotStore{state: st.Clone()}
}

func (s *SnapshotStore) Load(_ context.Context) (domain.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone(), nil
}

func (s *SnapshotStore) Save(_ context.Context, st domain.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st.Clone()
	s.saves++
	return nil
}

// Saves reports how many times the state was written.
func (s *SnapshotStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
