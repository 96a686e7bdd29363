package notification

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"crmcore/pkg/platform/sentinel"
)

// InMemoryStore keeps notifications in process memory for tests and local
// development.
type InMemoryStore struct {
	mu            sync.RWMutex
	notifications map[uuid.UUID]*Notification
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{notifications: make(map[uuid.UUID]*Notification)}
}

func (s *InMemoryStore) Create(_ context.Context, n *Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *n
	s.notifications[n.ID] = &cp
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id uuid.UUID) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notifications[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (s *InMemoryStore) ListByRecipient(_ context.Context, recipientID uuid.UUID, onlyUnread bool, limit int) ([]*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Notification
	for _, n := range s.notifications {
		if n.RecipientID != recipientID {
			continue
		}
		if onlyUnread && n.IsRead {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) SetRead(_ context.Context, id uuid.UUID, readAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if n.IsRead {
		return nil
	}
	n.IsRead = true
	t := readAt
	n.ReadAt = &t
	return nil
}

func (s *InMemoryStore) SetUnread(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	n.IsRead = false
	n.ReadAt = nil
	return nil
}

func (s *InMemoryStore) MarkAllRead(_ context.Context, recipientID uuid.UUID, readAt time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var flipped int64
	for _, n := range s.notifications {
		if n.RecipientID != recipientID || n.IsRead {
			continue
		}
		n.IsRead = true
		t := readAt
		n.ReadAt = &t
		flipped++
	}
	return flipped, nil
}

func (s *InMemoryStore) CountUnread(_ context.Context, recipientID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, n := range s.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, n := range s.notifications {
		if n.IsRead && n.ReadAt != nil && n.ReadAt.Before(cutoff) {
			delete(s.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}
