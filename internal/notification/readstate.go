package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"crmcore/internal/platform/metrics"
	"crmcore/pkg/platform/sentinel"
)

// DefaultCleanupAge is how long a read notification survives before the
// cleanup sweep removes it.
const DefaultCleanupAge = 30 * 24 * time.Hour

// ReadStateTracker owns the is_read/read_at transitions and the cleanup of
// old read notifications. The invariant read_at-present <=> is_read is
// enforced here with explicit setters, never with save-time hooks.
type ReadStateTracker struct {
	store   Store
	cache   *UnreadCache
	logger  *slog.Logger
	metrics *metrics.Metrics
	clock   func() time.Time
}

// TrackerOption configures a ReadStateTracker.
type TrackerOption func(*ReadStateTracker)

// WithTrackerClock sets the clock function for testability.
func WithTrackerClock(clock func() time.Time) TrackerOption {
	return func(t *ReadStateTracker) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// NewReadStateTracker constructs the tracker. cache may be nil when Redis is
// not configured; correctness never depends on it.
func NewReadStateTracker(store Store, cache *UnreadCache, logger *slog.Logger, m *metrics.Metrics, opts ...TrackerOption) *ReadStateTracker {
	t := &ReadStateTracker{
		store:   store,
		cache:   cache,
		logger:  logger,
		metrics: m,
		clock:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// MarkRead flips one notification to read. Idempotent: re-marking an already
// read notification succeeds without touching read_at.
func (t *ReadStateTracker) MarkRead(ctx context.Context, id uuid.UUID) error {
	n, err := t.store.Get(ctx, id)
	if err != nil {
		return t.wrapLookup("mark read", err)
	}
	if err := t.store.SetRead(ctx, id, t.clock().UTC()); err != nil {
		return t.wrapLookup("mark read", err)
	}
	t.cache.Invalidate(ctx, n.RecipientID)
	t.metrics.AddNotificationsRead(1)
	return nil
}

// MarkUnread flips one notification back to unread and clears read_at.
func (t *ReadStateTracker) MarkUnread(ctx context.Context, id uuid.UUID) error {
	n, err := t.store.Get(ctx, id)
	if err != nil {
		return t.wrapLookup("mark unread", err)
	}
	if err := t.store.SetUnread(ctx, id); err != nil {
		return t.wrapLookup("mark unread", err)
	}
	t.cache.Invalidate(ctx, n.RecipientID)
	return nil
}

// MarkAllRead flips every notification the user had unread when the call
// started. Notifications dispatched while the update runs may or may not be
// included; only the snapshot at call time is guaranteed.
func (t *ReadStateTracker) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	flipped, err := t.store.MarkAllRead(ctx, recipientID, t.clock().UTC())
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w: %w", sentinel.ErrStorage, err)
	}
	t.cache.Invalidate(ctx, recipientID)
	t.metrics.AddNotificationsRead(flipped)
	return flipped, nil
}

// UnreadCount returns the user's unread total, served from the cache when it
// is warm.
func (t *ReadStateTracker) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	if count, ok := t.cache.Get(ctx, recipientID); ok {
		return count, nil
	}
	count, err := t.store.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w: %w", sentinel.ErrStorage, err)
	}
	t.cache.Set(ctx, recipientID, count)
	return count, nil
}

// List returns the user's notifications, newest first.
func (t *ReadStateTracker) List(ctx context.Context, recipientID uuid.UUID, onlyUnread bool, limit int) ([]*Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	out, err := t.store.ListByRecipient(ctx, recipientID, onlyUnread, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w: %w", sentinel.ErrStorage, err)
	}
	return out, nil
}

// Cleanup permanently removes read notifications whose read_at is older than
// the given age. Unread notifications are never auto-deleted regardless of
// age.
func (t *ReadStateTracker) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		olderThan = DefaultCleanupAge
	}
	cutoff := t.clock().UTC().Add(-olderThan)
	deleted, err := t.store.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup read notifications: %w: %w", sentinel.ErrStorage, err)
	}
	if deleted > 0 {
		t.metrics.AddNotificationsCleaned(deleted)
		t.logger.InfoContext(ctx, "cleaned up read notifications",
			"deleted", deleted,
			"cutoff", cutoff,
		)
	}
	return deleted, nil
}

// RunCleanup sweeps on the given interval until ctx is canceled.
func (t *ReadStateTracker) RunCleanup(ctx context.Context, interval, olderThan time.Duration) error {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := t.Cleanup(ctx, olderThan); err != nil {
				t.logger.ErrorContext(ctx, "notification cleanup failed", "error", err)
			}
		}
	}
}

func (t *ReadStateTracker) wrapLookup(op string, err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, sentinel.ErrStorage, err)
}
