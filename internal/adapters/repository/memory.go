package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

// MemoryStore keeps runs in process memory.
type MemoryStore struct {
	settings
	mu     sync.RWMutex
	runs   map[string]Run
	order  []string // newest first
	closed bool
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{settings: defaultSettings(), runs: map[string]Run{}}
	for _, opt := range opts {
		opt(&s.settings)
	}
	return s
}

func newer(a, b Run) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, r Run) error {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if _, ok := s.runs[r.ID]; ok {
		return errors.Wrapf(ErrDuplicate, "%s", r.ID)
	}
	s.runs[r.ID] = r
	i := sort.Search(len(s.order), func(i int) bool { return newer(r, s.runs[s.order[i]]) })
	s.order = append(s.order, "")
	copy(s.order[i+1:], s.order[i:])
	s.order[i] = r.ID
	s.rec.ObserveStore("save", time.Since(start), len(s.runs))
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (Run, error) {
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Run{}, ErrClosed
	}
	r, ok := s.runs[id]
	s.rec.ObserveStore("get", time.Since(start), -1)
	if !ok {
		return Run{}, errors.Wrapf(ErrNotFound, "%s", id)
	}
	return r, nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, limit int) ([]Run, error) {
	if err := checkLimit(limit, s.maxLimit); err != nil {
		return nil, err
	}
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	n := min(limit, len(s.order))
	out := make([]Run, 0, n)
	for _, id := range s.order[:n] {
		r := s.runs[id]
		r.Summary = nil
		out = append(out, r)
	}
	s.rec.ObserveStore("list", time.Since(start), -1)
	return out, nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	return len(s.runs), nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
