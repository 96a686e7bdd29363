package template

import (
	"context"
	"sync"

	"crmcore/pkg/platform/sentinel"
)

// InMemoryStore keeps the template catalog in process memory.
type InMemoryStore struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{templates: make(map[string]*Template)}
}

func (s *InMemoryStore) Upsert(_ context.Context, t *Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.templates[t.Key]; ok {
		cp := *t
		cp.CreatedAt = existing.CreatedAt
		s.templates[t.Key] = &cp
		return nil
	}
	cp := *t
	s.templates[t.Key] = &cp
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, key string) (*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *t
	return &cp, nil
}
