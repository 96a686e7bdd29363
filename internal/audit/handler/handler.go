package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"crmcore/internal/audit"
	"crmcore/internal/domain"
	"crmcore/internal/platform/middleware"
	"crmcore/internal/transport/shared"
)

// Service is the audit surface the handler needs. Record is reserved for the
// service-to-service route; end users only read the trail.
type Service interface {
	Record(ctx context.Context, e audit.Entry) (*audit.Record, error)
	Recent(ctx context.Context, limit int) ([]*audit.Record, error)
	ByEntity(ctx context.Context, kind domain.EntityKind, entityID string) ([]*audit.Record, error)
	ByActor(ctx context.Context, actorID uuid.UUID) ([]*audit.Record, error)
}

// Handler exposes the audit trail to admins and the record endpoint to the
// CRM's domain services.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the audit query routes on r. The router applies auth plus
// an admin-role guard before these run.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit/recent", h.handleRecent)
	r.Get("/audit/entity/{kind}/{id}", h.handleByEntity)
	r.Get("/audit/actor/{id}", h.handleByActor)
}

// RegisterInternal mounts the service-to-service record route.
func (h *Handler) RegisterInternal(r chi.Router) {
	r.Post("/internal/audit/records", h.handleRecord)
}

// recordRequest is the wire form of an audit write from a domain service.
// The ip/user_agent pair describes the end user's original request, which the
// calling service captured at its own edge.
type recordRequest struct {
	ActorID    string         `json:"actor_id"`
	EntityKind string         `json:"entity_kind"`
	EntityID   string         `json:"entity_id"`
	Action     string         `json:"action"`
	OldState   map[string]any `json:"old_state,omitempty"`
	NewState   map[string]any `json:"new_state,omitempty"`
	IP         string         `json:"ip,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty"`
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	actorID, err := uuid.Parse(req.ActorID)
	if err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid actor id"})
		return
	}

	rec, err := h.service.Record(r.Context(), audit.Entry{
		ActorID:  actorID,
		Kind:     domain.EntityKind(req.EntityKind),
		EntityID: req.EntityID,
		Action:   audit.Action(req.Action),
		OldState: req.OldState,
		NewState: req.NewState,
		Request: audit.RequestInfo{
			IP:        req.IP,
			UserAgent: audit.SummarizeUserAgent(req.UserAgent),
		},
	})
	if err != nil {
		h.logError(r, "audit record failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, rec)
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		h.logError(r, "list recent audit records failed", err)
		shared.WriteError(w, err)
		return
	}
	h.writeRecords(w, records)
}

func (h *Handler) handleByEntity(w http.ResponseWriter, r *http.Request) {
	kind := domain.EntityKind(chi.URLParam(r, "kind"))
	entityID := chi.URLParam(r, "id")

	records, err := h.service.ByEntity(r.Context(), kind, entityID)
	if err != nil {
		h.logError(r, "list audit records by entity failed", err)
		shared.WriteError(w, err)
		return
	}
	h.writeRecords(w, records)
}

func (h *Handler) handleByActor(w http.ResponseWriter, r *http.Request) {
	actorID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid actor id"})
		return
	}

	records, err := h.service.ByActor(r.Context(), actorID)
	if err != nil {
		h.logError(r, "list audit records by actor failed", err)
		shared.WriteError(w, err)
		return
	}
	h.writeRecords(w, records)
}

func (h *Handler) writeRecords(w http.ResponseWriter, records []*audit.Record) {
	if records == nil {
		records = []*audit.Record{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg,
		"request_id", middleware.GetRequestID(r.Context()),
		"error", err,
	)
}
