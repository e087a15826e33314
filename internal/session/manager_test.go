package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/smartresume/internal/model"
)

// mapStore is a minimal Store for exercising the manager.
type mapStore struct {
	mu       sync.Mutex
	forms    map[string]model.FormState
	cleanups int
}

func newMapStore() *mapStore {
	return &mapStore{forms: make(map[string]model.FormState)}
}

func (s *mapStore) Load(_ context.Context, id string) (model.FormState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[id]
	return f.Clone(), ok, nil
}

func (s *mapStore) Save(_ context.Context, id string, f model.FormState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forms[id] = f.Clone()
	return nil
}

func (s *mapStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.forms, id)
	return nil
}

func (s *mapStore) Cleanup(context.Context, time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanups++
	return 0, nil
}

func (s *mapStore) Close() error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestManager_NewSessionGetsDefaults(t *testing.T) {
	m := NewManager(newMapStore(), testLogger())

	var got model.FormState
	err := m.Do(context.Background(), "a", func(st *State) error {
		got = st.Form()
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got.ExperienceLevel != model.Beginner || got.ResumeFormat != model.Chronological {
		t.Errorf("new session form = %+v, want defaults", got)
	}
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	m := NewManager(newMapStore(), testLogger())
	ctx := context.Background()

	m.Do(ctx, "a", func(st *State) error {
		st.SetJobTitle("Data Analyst")
		st.SetSkills([]string{"SQL"})
		return nil
	})
	m.Do(ctx, "b", func(st *State) error {
		st.SetJobTitle("Chef")
		return nil
	})

	var a, b model.FormState
	m.Do(ctx, "a", func(st *State) error { a = st.Form(); return nil })
	m.Do(ctx, "b", func(st *State) error { b = st.Form(); return nil })

	if a.JobTitle != "Data Analyst" || len(a.Skills) != 1 {
		t.Errorf("session a = %+v", a)
	}
	if b.JobTitle != "Chef" || len(b.Skills) != 0 {
		t.Errorf("session b = %+v", b)
	}
}

func TestManager_SavesEvenWhenFnFails(t *testing.T) {
	store := newMapStore()
	m := NewManager(store, testLogger())
	wantErr := errors.New("boom")

	err := m.Do(context.Background(), "a", func(st *State) error {
		st.SetResult("", "request failed")
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Do error = %v, want %v", err, wantErr)
	}

	f, ok, _ := store.Load(context.Background(), "a")
	if !ok || f.LastError != "request failed" {
		t.Errorf("stored form = %+v, ok=%v", f, ok)
	}
}

func TestManager_SameSessionSerialized(t *testing.T) {
	m := NewManager(newMapStore(), testLogger())
	ctx := context.Background()

	var inFlight, maxInFlight int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Do(ctx, "shared", func(st *State) error {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					cur := atomic.LoadInt32(&maxInFlight)
					if n <= cur || atomic.CompareAndSwapInt32(&maxInFlight, cur, n) {
						break
					}
				}
				f := st.Form()
				st.SetSkills(append(f.Skills, "x"))
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	if maxInFlight != 1 {
		t.Errorf("max concurrent handlers = %d, want 1", maxInFlight)
	}
	var f model.FormState
	m.Do(ctx, "shared", func(st *State) error { f = st.Form(); return nil })
	if len(f.Skills) != 20 {
		t.Errorf("len(Skills) = %d, want 20 (no lost updates)", len(f.Skills))
	}
}

func TestManager_CleanupPrunesIdleLocks(t *testing.T) {
	store := newMapStore()
	m := NewManager(store, testLogger())
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	m.now = func() time.Time { return base.Add(-3 * time.Hour) }
	m.Do(ctx, "idle", func(*State) error { return nil })
	m.now = func() time.Time { return base }
	m.Do(ctx, "fresh", func(*State) error { return nil })

	if _, err := m.Cleanup(ctx, time.Hour); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if store.cleanups != 1 {
		t.Errorf("store cleanups = %d, want 1", store.cleanups)
	}
	if _, ok := m.locks["idle"]; ok {
		t.Error("idle lock was not pruned")
	}
	if _, ok := m.locks["fresh"]; !ok {
		t.Error("fresh lock was pruned")
	}
}

func TestManager_ResetStartsFromDefaults(t *testing.T) {
	st := newMapStore()
	m := NewManager(st, testLogger())
	ctx := context.Background()

	m.Do(ctx, "a", func(s *State) error {
		s.SetJobTitle("Chef")
		s.SetSkills([]string{"Baking"})
		s.SetResumeFormat(model.Hybrid)
		return nil
	})
	m.Do(ctx, "b", func(s *State) error {
		s.SetJobTitle("Pilot")
		return nil
	})

	if err := m.Reset(ctx, "a"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, ok, _ := st.Load(ctx, "a"); ok {
		t.Error("reset session still stored")
	}

	var got, other model.FormState
	m.Do(ctx, "a", func(s *State) error { got = s.Form(); return nil })
	m.Do(ctx, "b", func(s *State) error { other = s.Form(); return nil })

	if got.JobTitle != "" || len(got.Skills) != 0 || got.ResumeFormat != model.Chronological {
		t.Errorf("after reset = %+v, want defaults", got)
	}
	if other.JobTitle != "Pilot" {
		t.Errorf("other session changed by reset: %+v", other)
	}
}
