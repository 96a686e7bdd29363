package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"crmcore/internal/domain"
	"crmcore/internal/notification"
	"crmcore/internal/platform/middleware"
	"crmcore/internal/transport/shared"
)

// Service is the read-state surface the handler needs.
type Service interface {
	List(ctx context.Context, recipientID uuid.UUID, onlyUnread bool, limit int) ([]*notification.Notification, error)
	UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkUnread(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

// Dispatcher is the dispatch surface exposed to the CRM's domain services.
type Dispatcher interface {
	Dispatch(ctx context.Context, req notification.Request) (*notification.Notification, error)
}

// Handler exposes the authenticated user's notifications. It delegates to the
// read-state tracker and keeps transport concerns isolated.
type Handler struct {
	service    Service
	dispatcher Dispatcher
	logger     *slog.Logger
}

// New creates a notification Handler.
func New(service Service, dispatcher Dispatcher, logger *slog.Logger) *Handler {
	return &Handler{service: service, dispatcher: dispatcher, logger: logger}
}

// Register mounts the notification routes on r. Auth middleware is applied by
// the router; every route assumes an authenticated user in context.
func (h *Handler) Register(r chi.Router) {
	r.Get("/notifications", h.handleList)
	r.Get("/notifications/unread-count", h.handleUnreadCount)
	r.Post("/notifications/read-all", h.handleMarkAllRead)
	r.Post("/notifications/{id}/read", h.handleMarkRead)
	r.Post("/notifications/{id}/unread", h.handleMarkUnread)
}

// RegisterInternal mounts the service-to-service dispatch route. The router
// gates it on the service role: end users never dispatch notifications.
func (h *Handler) RegisterInternal(r chi.Router) {
	r.Post("/internal/notifications", h.handleDispatch)
}

// dispatchRequest is the wire form of a dispatch call from a domain service.
type dispatchRequest struct {
	RecipientID string            `json:"recipient_id"`
	TemplateKey string            `json:"template_key"`
	Severity    string            `json:"severity"`
	Values      map[string]string `json:"values"`
	TriggeredBy string            `json:"triggered_by,omitempty"`
	EntityKind  string            `json:"entity_kind,omitempty"`
	EntityID    string            `json:"entity_id,omitempty"`
}

func (h *Handler) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var req dispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	recipientID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid recipient id"})
		return
	}

	dr := notification.Request{
		RecipientID: recipientID,
		TemplateKey: req.TemplateKey,
		Severity:    notification.Severity(req.Severity),
		Values:      req.Values,
		Kind:        domain.EntityKind(req.EntityKind),
		EntityID:    req.EntityID,
	}
	if req.TriggeredBy != "" {
		triggeredBy, err := uuid.Parse(req.TriggeredBy)
		if err != nil {
			shared.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid triggered_by id"})
			return
		}
		dr.TriggeredBy = &triggeredBy
	}

	n, err := h.dispatcher.Dispatch(r.Context(), dr)
	if err != nil {
		if errors.Is(err, notification.ErrMissingRecipient) {
			shared.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		h.logError(r, "dispatch failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, n)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUser(w, r)
	if !ok {
		return
	}
	onlyUnread := r.URL.Query().Get("unread") == "true"
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, err := h.service.List(r.Context(), userID, onlyUnread, limit)
	if err != nil {
		h.logError(r, "list notifications failed", err)
		shared.WriteError(w, err)
		return
	}
	if items == nil {
		items = []*notification.Notification{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"notifications": items})
}

func (h *Handler) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUser(w, r)
	if !ok {
		return
	}
	count, err := h.service.UnreadCount(r.Context(), userID)
	if err != nil {
		h.logError(r, "unread count failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]int64{"unread": count})
}

func (h *Handler) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUser(w, r)
	if !ok {
		return
	}
	updated, err := h.service.MarkAllRead(r.Context(), userID)
	if err != nil {
		h.logError(r, "mark all read failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	h.markOne(w, r, h.service.MarkRead)
}

func (h *Handler) handleMarkUnread(w http.ResponseWriter, r *http.Request) {
	h.markOne(w, r, h.service.MarkUnread)
}

func (h *Handler) markOne(w http.ResponseWriter, r *http.Request, mark func(context.Context, uuid.UUID) error) {
	if _, ok := h.authedUser(w, r); !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid notification id"})
		return
	}
	if err := mark(r.Context(), id); err != nil {
		h.logError(r, "read-state transition failed", err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// authedUser pulls the authenticated user out of the request context. A
// missing or malformed ID means the auth middleware is miswired.
func (h *Handler) authedUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := middleware.GetUserID(r.Context())
	userID, err := uuid.Parse(raw)
	if raw == "" || err != nil {
		h.logger.ErrorContext(r.Context(), "user id missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(r.Context()),
		)
		shared.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return uuid.Nil, false
	}
	return userID, true
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg,
		"request_id", middleware.GetRequestID(r.Context()),
		"error", err,
	)
}
