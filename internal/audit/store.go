package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"crmcore/internal/domain"
)

// Store is the persistence contract for audit records.
//
// Append-only from the request path: there is no update method.
// DeleteOlderThan is reserved for the retention manager.
type Store interface {
	Append(ctx context.Context, rec *Record) error
	ListRecent(ctx context.Context, limit int) ([]*Record, error)
	ListByEntity(ctx context.Context, ref domain.EntityRef) ([]*Record, error)
	ListByActor(ctx context.Context, actorID uuid.UUID) ([]*Record, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
