package audit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmcore/internal/audit"
	"crmcore/internal/audit/store/memory"
	"crmcore/internal/domain"
	"crmcore/pkg/platform/sentinel"
)

func appendRecordAt(t *testing.T, store *memory.InMemoryStore, createdAt time.Time) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := store.Append(context.Background(), &audit.Record{
		ID:        id,
		ActorID:   uuid.New(),
		Entity:    domain.EntityRef{Kind: domain.KindTasks, ID: "t1"},
		Action:    audit.ActionUpdate,
		CreatedAt: createdAt,
	})
	require.NoError(t, err)
	return id
}

func TestRetention_SweepRemovesOnlyRecordsPastHorizon(t *testing.T) {
	store := memory.NewInMemoryStore()
	now := time.Now().UTC()

	appendRecordAt(t, store, now.Add(-3*365*24*time.Hour))
	appendRecordAt(t, store, now.Add(-25*30*24*time.Hour))
	freshID := appendRecordAt(t, store, now.Add(-time.Hour))
	youngID := appendRecordAt(t, store, now.Add(-365*24*time.Hour))

	rm := audit.NewRetentionManager(store, audit.DefaultRetentionHorizon, time.Hour, testLogger(), nil)

	deleted, err := rm.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	remaining, err := store.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, freshID, remaining[0].ID)
	assert.Equal(t, youngID, remaining[1].ID)
}

func TestRetention_SweepIsIdempotent(t *testing.T) {
	store := memory.NewInMemoryStore()
	now := time.Now().UTC()
	appendRecordAt(t, store, now.Add(-3*365*24*time.Hour))

	rm := audit.NewRetentionManager(store, 0, 0, testLogger(), nil)

	deleted, err := rm.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	deleted, err = rm.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestRetention_RecordAtExactHorizonSurvives(t *testing.T) {
	store := memory.NewInMemoryStore()
	// A record younger than the horizon by a generous margin must never go,
	// regardless of sweep timing.
	appendRecordAt(t, store, time.Now().UTC().Add(-audit.DefaultRetentionHorizon+time.Hour))

	rm := audit.NewRetentionManager(store, audit.DefaultRetentionHorizon, time.Hour, testLogger(), nil)

	deleted, err := rm.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

type failingDeleteStore struct {
	audit.Store
}

func (failingDeleteStore) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, errors.New("relation does not exist")
}

func TestRetention_SweepWrapsStorageFailure(t *testing.T) {
	rm := audit.NewRetentionManager(failingDeleteStore{}, 0, 0, testLogger(), nil)

	_, err := rm.SweepOnce(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel.ErrStorage))
}

func TestRetention_RunStopsOnCancel(t *testing.T) {
	store := memory.NewInMemoryStore()
	rm := audit.NewRetentionManager(store, time.Hour, 10*time.Millisecond, testLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rm.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("retention loop did not stop after cancel")
	}
}
