package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	recipient := uuid.New()

	var wg sync.WaitGroup
	ids := make([]uuid.UUID, 50)
	for i := range ids {
		ids[i] = uuid.New()
	}

	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_ = store.Create(ctx, &Notification{
				ID:          id,
				RecipientID: recipient,
				TemplateKey: "task_assigned",
				Severity:    SeverityInfo,
				CreatedAt:   time.Now().UTC(),
			})
		}(id)
	}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.CountUnread(ctx, recipient)
			_, _ = store.ListByRecipient(ctx, recipient, true, 10)
		}()
	}
	wg.Wait()

	count, err := store.CountUnread(ctx, recipient)
	require.NoError(t, err)
	assert.Equal(t, int64(len(ids)), count)
}

func TestInMemoryStore_CopiesOnReadAndWrite(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	n := &Notification{
		ID:          uuid.New(),
		RecipientID: uuid.New(),
		Title:       "original",
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, store.Create(ctx, n))

	// Mutating the caller's copy must not reach the store.
	n.Title = "mutated"
	got, err := store.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", got.Title)

	// Mutating a fetched copy must not reach the store either.
	got.Title = "mutated again"
	again, err := store.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", again.Title)
}

func TestInMemoryStore_ListNewestFirst(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	recipient := uuid.New()

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	var last uuid.UUID
	for i := 0; i < 3; i++ {
		id := uuid.New()
		require.NoError(t, store.Create(ctx, &Notification{
			ID:          id,
			RecipientID: recipient,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
		last = id
	}

	out, err := store.ListByRecipient(ctx, recipient, false, 10)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, last, out[0].ID)
}

func TestSeverity_Valid(t *testing.T) {
	for _, s := range []Severity{SeverityInfo, SeverityWarning, SeveritySuccess, SeverityError} {
		assert.True(t, s.Valid(), "severity %q", s)
	}
	assert.False(t, Severity("critical").Valid())
	assert.False(t, Severity("").Valid())
}
