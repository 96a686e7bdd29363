package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"crmcore/internal/domain"
	"crmcore/internal/platform/metrics"
	"crmcore/pkg/platform/sentinel"
)

// Recorder validates, redacts and durably persists audit records. The write
// is synchronous on purpose: a domain mutation must not report success to its
// own caller until the audit record is confirmed, otherwise the trail grows
// silent gaps.
//
// The Recorder performs no retries. A failed store write surfaces as
// ErrStorage and the calling mutation is expected to fail with it.
type Recorder struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	clock   func() time.Time
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) RecorderOption {
	return func(r *Recorder) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// NewRecorder constructs the audit recorder.
func NewRecorder(store Store, logger *slog.Logger, m *metrics.Metrics, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:   store,
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer("crmcore/internal/audit"),
		clock:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Record persists one immutable audit record for a completed mutation.
//
// Validation errors (ErrInvalidEntityKind, ErrInvalidAction) are caller
// mistakes and persist nothing. Both state snapshots are redacted
// independently before the record is ever handed to the store.
func (r *Recorder) Record(ctx context.Context, e Entry) (*Record, error) {
	ctx, span := r.tracer.Start(ctx, "audit.Record",
		trace.WithAttributes(
			attribute.String("entity.kind", string(e.Kind)),
			attribute.String("audit.action", string(e.Action)),
		))
	defer span.End()

	if e.ActorID == uuid.Nil {
		return nil, fmt.Errorf("%w: actor id is required", sentinel.ErrInvalidAction)
	}
	if err := domain.ValidateAuditKind(e.Kind); err != nil {
		return nil, err
	}
	if err := ValidateAction(e.Action); err != nil {
		return nil, err
	}

	rec := &Record{
		ID:        uuid.New(),
		ActorID:   e.ActorID,
		Entity:    domain.EntityRef{Kind: e.Kind, ID: e.EntityID},
		Action:    e.Action,
		OldState:  Redact(e.OldState),
		NewState:  Redact(e.NewState),
		IP:        e.Request.IP,
		UserAgent: e.Request.UserAgent,
		CreatedAt: r.clock().UTC(),
	}

	if err := r.store.Append(ctx, rec); err != nil {
		r.metrics.IncAuditWriteFailures()
		r.logger.ErrorContext(ctx, "audit write failed",
			"entity_kind", string(e.Kind),
			"entity_id", e.EntityID,
			"action", string(e.Action),
			"error", err,
		)
		return nil, fmt.Errorf("append audit record: %w: %w", sentinel.ErrStorage, err)
	}

	r.metrics.IncAuditRecords(string(e.Action))
	return rec, nil
}

// Recent returns the newest records, newest first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	recs, err := r.store.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent audit records: %w: %w", sentinel.ErrStorage, err)
	}
	return recs, nil
}

// ByEntity returns the trail for one entity, newest first.
func (r *Recorder) ByEntity(ctx context.Context, kind domain.EntityKind, entityID string) ([]*Record, error) {
	if err := domain.ValidateAuditKind(kind); err != nil {
		return nil, err
	}
	recs, err := r.store.ListByEntity(ctx, domain.EntityRef{Kind: kind, ID: entityID})
	if err != nil {
		return nil, fmt.Errorf("list audit records by entity: %w: %w", sentinel.ErrStorage, err)
	}
	return recs, nil
}

// ByActor returns every record caused by one user, newest first.
func (r *Recorder) ByActor(ctx context.Context, actorID uuid.UUID) ([]*Record, error) {
	recs, err := r.store.ListByActor(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("list audit records by actor: %w: %w", sentinel.ErrStorage, err)
	}
	return recs, nil
}
