package history

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps runs in process memory. It is the default store of the
// server when no MongoDB URI is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]*Run
	max  int
}

// NewMemoryStore returns a store holding at most max runs; the oldest are
// evicted first. A non-positive max means unlimited.
func NewMemoryStore(max int) *MemoryStore {
	return &MemoryStore{runs: make(map[string]*Run), max: max}
}

func (s *MemoryStore) Record(ctx context.Context, run *Run) error {
	prepare(run)
	cp := *run
	cp.Moves = slices.Clone(run.Moves)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[cp.ID] = &cp
	if s.max > 0 && len(s.runs) > s.max {
		var oldest *Run
		for _, r := range s.runs {
			if oldest == nil || r.CreatedAt.Before(oldest.CreatedAt) {
				oldest = r
			}
		}
		delete(s.runs, oldest.ID)
	}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]*Run, error) {
	s.mu.RLock()
	out := make([]*Run, 0, len(s.runs))
	for _, r := range s.runs {
		cp := *r
		out = append(out, &cp)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Run) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if limit = normalizeLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
