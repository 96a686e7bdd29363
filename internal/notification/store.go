package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence contract for notifications.
//
// Mutation surface is deliberately narrow: rows are created by the
// dispatcher, flipped by the read-state tracker and deleted only by the
// read-notification cleanup. Nothing else touches them.
type Store interface {
	Create(ctx context.Context, n *Notification) error

	// Get returns sentinel.ErrNotFound for a missing id.
	Get(ctx context.Context, id uuid.UUID) (*Notification, error)

	ListByRecipient(ctx context.Context, recipientID uuid.UUID, onlyUnread bool, limit int) ([]*Notification, error)

	// SetRead flips a notification to read with the given timestamp. Already
	// read rows are left untouched; the call still succeeds. Missing rows
	// return sentinel.ErrNotFound.
	SetRead(ctx context.Context, id uuid.UUID, readAt time.Time) error

	// SetUnread flips a notification back to unread and clears read_at.
	// Missing rows return sentinel.ErrNotFound.
	SetUnread(ctx context.Context, id uuid.UUID) error

	// MarkAllRead flips every unread notification the recipient had at call
	// time and returns the number flipped. A notification created while the
	// update runs may or may not be included.
	MarkAllRead(ctx context.Context, recipientID uuid.UUID, readAt time.Time) (int64, error)

	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)

	// DeleteReadBefore removes notifications that are read with read_at older
	// than the cutoff. Unread rows are never touched regardless of age.
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
