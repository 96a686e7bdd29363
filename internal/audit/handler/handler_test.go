package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmcore/internal/audit"
	"crmcore/internal/audit/store/memory"
)

// The audit handler is tested against the real recorder and the in-memory
// store: its contract is mostly pass-through, so the interesting behavior is
// the wiring, not the mocking.
func newTestRouter(t *testing.T) (chi.Router, *memory.InMemoryStore) {
	t.Helper()
	store := memory.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := audit.NewRecorder(store, logger, nil)

	h := New(recorder, logger)
	r := chi.NewRouter()
	h.Register(r)
	h.RegisterInternal(r)
	return r, store
}

func postRecord(t *testing.T, router chi.Router, payload map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/internal/audit/records", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleRecord(t *testing.T) {
	router, store := newTestRouter(t)
	actorID := uuid.New()

	rec := postRecord(t, router, map[string]any{
		"actor_id":    actorID.String(),
		"entity_kind": "users",
		"entity_id":   uuid.NewString(),
		"action":      "update",
		"old_state":   map[string]any{"password": "p1", "name": "Bob"},
		"new_state":   map[string]any{"password": "p2", "name": "Bob"},
		"ip":          "203.0.113.9",
		"user_agent":  "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created audit.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, audit.RedactionMarker, created.OldState["password"])
	assert.Equal(t, audit.RedactionMarker, created.NewState["password"])
	assert.Equal(t, "203.0.113.9", created.IP)
	assert.Contains(t, created.UserAgent, "Chrome")

	stored, err := store.ListByActor(context.Background(), actorID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
}

func TestHandleRecordInvalidKind(t *testing.T) {
	router, store := newTestRouter(t)

	rec := postRecord(t, router, map[string]any{
		"actor_id":    uuid.NewString(),
		"entity_kind": "invoices",
		"entity_id":   "i1",
		"action":      "create",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	records, err := store.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHandleRecordInvalidActor(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := postRecord(t, router, map[string]any{
		"actor_id":    "not-a-uuid",
		"entity_kind": "tasks",
		"entity_id":   "t1",
		"action":      "create",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRecent(t *testing.T) {
	router, _ := newTestRouter(t)

	for i := 0; i < 3; i++ {
		rec := postRecord(t, router, map[string]any{
			"actor_id":    uuid.NewString(),
			"entity_kind": "projects",
			"entity_id":   uuid.NewString(),
			"action":      "create",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/audit/recent?limit=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Records []*audit.Record `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Records, 2)
}

func TestHandleByEntity(t *testing.T) {
	router, _ := newTestRouter(t)
	entityID := uuid.NewString()

	rec := postRecord(t, router, map[string]any{
		"actor_id":    uuid.NewString(),
		"entity_kind": "leads",
		"entity_id":   entityID,
		"action":      "update",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/audit/entity/leads/"+entityID, nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	var body struct {
		Records []*audit.Record `json:"records"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Len(t, body.Records, 1)
	assert.Equal(t, entityID, body.Records[0].Entity.ID)
}

func TestHandleByActor(t *testing.T) {
	router, _ := newTestRouter(t)
	actorID := uuid.New()

	rec := postRecord(t, router, map[string]any{
		"actor_id":    actorID.String(),
		"entity_kind": "goals",
		"entity_id":   uuid.NewString(),
		"action":      "delete",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/audit/actor/"+actorID.String(), nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	var body struct {
		Records []*audit.Record `json:"records"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Len(t, body.Records, 1)
	assert.Equal(t, actorID, body.Records[0].ActorID)
}

func TestHandleByEntityInvalidKind(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/audit/entity/invoices/i1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
