// Package exclusion tracks the items already drawn during one daily run.
package exclusion

import (
	"context"
	"sync"
)

// Set records item names drawn today so that no item is drawn twice on the
// same day. The set is never relaxed.
type Set interface {
	// SeenAndRecord checks whether name is already excluded and records it if
	// not. Returns true if name was already present.
	SeenAndRecord(ctx context.Context, name string) bool

	// Contains reports whether name is excluded.
	Contains(name string) bool

	// Names returns excluded names in insertion order.
	Names() []string

	Size() int
}

// memorySet implements Set with a map plus an insertion-ordered slice.
type memorySet struct {
	mu    sync.RWMutex
	seen  map[string]struct{}
	order []string
}

// New creates an empty exclusion set.
func New(opts ...Option) Set {
	s := &memorySet{}
	cfg := options{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(&cfg)
	}
	s.seen = make(map[string]struct{}, cfg.capacity)
	s.order = make([]string, 0, cfg.capacity)
	for _, name := range cfg.seed {
		s.SeenAndRecord(context.Background(), name)
	}
	return s
}

func (s *memorySet) SeenAndRecord(_ context.Context, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[name]; ok {
		return true
	}
	s.seen[name] = struct{}{}
	s.order = append(s.order, name)
	return false
}

func (s *memorySet) Contains(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[name]
	return ok
}

func (s *memorySet) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *memorySet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
