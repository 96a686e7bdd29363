package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"crmcore/internal/domain"
	"crmcore/internal/notification/template"
	"crmcore/internal/platform/metrics"
	"crmcore/pkg/platform/sentinel"
)

// ErrMissingRecipient rejects a dispatch without a target user.
var ErrMissingRecipient = errors.New("recipient id is required")

// Request describes one notification to deliver.
type Request struct {
	RecipientID uuid.UUID
	TemplateKey string
	Severity    Severity
	Values      map[string]string

	// TriggeredBy is the user whose action caused the notification, when
	// different from the recipient.
	TriggeredBy *uuid.UUID

	// Kind/EntityID optionally link the notification to its subject.
	Kind     domain.EntityKind
	EntityID string
}

// Dispatcher renders and persists notifications. The title is rendered once,
// at dispatch time: later template edits never retroactively alter what a
// user was told.
//
// Dispatch failures are non-fatal to the triggering domain mutation; callers
// log them and move on. That policy lives with the caller, not here.
type Dispatcher struct {
	store    Store
	registry *template.Registry
	cache    *UnreadCache
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	clock    func() time.Time
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherClock sets the clock function for testability.
func WithDispatcherClock(clock func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		if clock != nil {
			d.clock = clock
		}
	}
}

// NewDispatcher constructs the dispatcher. cache may be nil when Redis is not
// configured.
func NewDispatcher(store Store, registry *template.Registry, cache *UnreadCache, logger *slog.Logger, m *metrics.Metrics, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		store:    store,
		registry: registry,
		cache:    cache,
		logger:   logger,
		metrics:  m,
		tracer:   otel.Tracer("crmcore/internal/notification"),
		clock:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Dispatch resolves the template, renders the title and persists one unread
// notification. An unknown template key fails with ErrUnknownTemplate and
// persists nothing: a notification must never exist with missing content.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Notification, error) {
	ctx, span := d.tracer.Start(ctx, "notification.Dispatch",
		trace.WithAttributes(attribute.String("template.key", req.TemplateKey)))
	defer span.End()

	if req.RecipientID == uuid.Nil {
		return nil, ErrMissingRecipient
	}
	if req.Kind != "" || req.EntityID != "" {
		if err := domain.ValidateNotificationKind(req.Kind); err != nil {
			return nil, err
		}
	}

	tmpl, err := d.registry.Find(ctx, req.TemplateKey)
	if err != nil {
		return nil, err
	}

	severity := req.Severity
	if !severity.Valid() {
		severity = SeverityInfo
	}

	n := &Notification{
		ID:          uuid.New(),
		RecipientID: req.RecipientID,
		TriggeredBy: req.TriggeredBy,
		TemplateKey: tmpl.Key,
		Entity:      domain.EntityRef{Kind: req.Kind, ID: req.EntityID},
		Severity:    severity,
		Title:       template.Render(tmpl.Text, req.Values),
		IsRead:      false,
		CreatedAt:   d.clock().UTC(),
	}

	if err := d.store.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w: %w", sentinel.ErrStorage, err)
	}

	d.cache.Invalidate(ctx, req.RecipientID)
	d.metrics.IncNotificationsDispatched(string(severity))
	d.logger.DebugContext(ctx, "notification dispatched",
		"recipient_id", req.RecipientID,
		"template_key", tmpl.Key,
		"severity", string(severity),
	)
	return n, nil
}
