package store

import (
	"context"
	"sync"
	"time"

	"github.com/amishk599/smartresume/internal/model"
	"github.com/amishk599/smartresume/internal/session"
)

var _ session.Store = (*MemoryStore)(nil)

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	now      func() time.Time
}

type memoryEntry struct {
	form      model.FormState
	updatedAt time.Time
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

func (s *MemoryStore) Load(_ context.Context, id string) (model.FormState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return model.FormState{}, false, nil
	}
	return e.form.Clone(), true, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, form model.FormState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = memoryEntry{form: form.Clone(), updatedAt: s.now()}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) Cleanup(_ context.Context, olderThan time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-olderThan)
	removed := 0
	for id, e := range s.sessions {
		if e.updatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Close() error { return nil }
