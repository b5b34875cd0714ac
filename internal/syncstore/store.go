package syncstore

import (
	"sync"

	"github.com/kanishk-8/EcoCircle/internal/observability"
)

// Store owns the snapshot and serializes transitions. Within one Dispatch
// all views update atomically; subscribers only ever observe complete
// post-transition snapshots.
type Store struct {
	mu      sync.RWMutex
	snap    Snapshot
	subs    map[int]chan Snapshot
	nextSub int
}

// New creates a store with an empty snapshot.
func New() *Store {
	return &Store{subs: make(map[int]chan Snapshot)}
}

// Dispatch applies one transition and returns the resulting snapshot.
func (s *Store) Dispatch(a Action) Snapshot {
	s.mu.Lock()
	s.snap = Reduce(s.snap, a)
	snap := s.snap
	for _, ch := range s.subs {
		offer(ch, snap)
	}
	s.mu.Unlock()

	observability.SyncTransitions.WithLabelValues(a.Name()).Inc()
	return snap
}

// Snapshot returns the current state. Slices in the snapshot are never
// mutated by later transitions, so the copy is safe to hold.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe registers a snapshot listener. The channel holds the latest
// snapshot only: a slow consumer skips intermediate states rather than
// blocking dispatch. The returned cancel func must be called when done.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, 1)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// offer replaces any undelivered snapshot with the newest one.
func offer(ch chan Snapshot, snap Snapshot) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
