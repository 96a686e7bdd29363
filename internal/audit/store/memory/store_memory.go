package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"crmcore/internal/audit"
	"crmcore/internal/domain"
)

// InMemoryStore keeps audit records in process memory. It backs unit tests
// and local development; production uses the Postgres store.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []*audit.Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, rec *audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	s.records = append(s.records, &cp)
	return nil
}

func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]*audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.snapshot(func(*audit.Record) bool { return true })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) ListByEntity(_ context.Context, ref domain.EntityRef) ([]*audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(func(r *audit.Record) bool { return r.Entity == ref }), nil
}

func (s *InMemoryStore) ListByActor(_ context.Context, actorID uuid.UUID) ([]*audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(func(r *audit.Record) bool { return r.ActorID == actorID }), nil
}

func (s *InMemoryStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.records[:0]
	var deleted int64
	for _, r := range s.records {
		if r.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return deleted, nil
}

// snapshot copies matching records, newest first. Callers hold the lock.
func (s *InMemoryStore) snapshot(match func(*audit.Record) bool) []*audit.Record {
	var out []*audit.Record
	for _, r := range s.records {
		if match(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
