package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Manager hands out per-session State under a lock so that two requests for
// the same session never interleave, while different sessions run freely.
type Manager struct {
	store  Store
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sessionLock
	now   func() time.Time
}

type sessionLock struct {
	mu       sync.Mutex
	lastUsed time.Time
}

// NewManager wraps store with per-session locking.
func NewManager(store Store, logger *slog.Logger) *Manager {
	return &Manager{
		store:  store,
		logger: logger,
		locks:  make(map[string]*sessionLock),
		now:    time.Now,
	}
}

func (m *Manager) lockFor(id string) *sessionLock {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sessionLock{}
		m.locks[id] = l
	}
	l.lastUsed = m.now()
	return l
}

// Do loads the session's state (initialising defaults for a new session),
// runs fn against it, and saves the result. The state is saved even when fn
// returns an error so that recorded failures are visible on the next read.
func (m *Manager) Do(ctx context.Context, id string, fn func(*State) error) error {
	l := m.lockFor(id)
	l.mu.Lock()
	defer l.mu.Unlock()

	form, ok, err := m.store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	var st *State
	if ok {
		st = FromForm(form)
	} else {
		st = NewState()
		m.logger.Debug("new session", "session", id)
	}

	fnErr := fn(st)

	if err := m.store.Save(ctx, id, st.Form()); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return fnErr
}

// Reset discards the session's stored form. The next Do for id starts from
// defaults.
func (m *Manager) Reset(ctx context.Context, id string) error {
	l := m.lockFor(id)
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("resetting session: %w", err)
	}
	m.logger.Debug("session reset", "session", id)
	return nil
}

// Cleanup removes sessions idle longer than ttl from the store and forgets
// their locks.
func (m *Manager) Cleanup(ctx context.Context, ttl time.Duration) (int, error) {
	n, err := m.store.Cleanup(ctx, ttl)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	cutoff := m.now().Add(-ttl)
	for id, l := range m.locks {
		if l.lastUsed.Before(cutoff) && l.mu.TryLock() {
			delete(m.locks, id)
			l.mu.Unlock()
		}
	}
	m.mu.Unlock()

	return n, nil
}
