package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"crmcore/internal/platform/metrics"
	"crmcore/pkg/platform/sentinel"
)

// DefaultRetentionHorizon keeps audit records for two years before they become
// eligible for removal.
const DefaultRetentionHorizon = 2 * 365 * 24 * time.Hour

// RetentionManager removes audit records past the horizon. It runs outside
// the request path and shares no mutable state with it: the cutoff criterion
// only moves forward in time, so a record can never be un-expired.
//
// The contract is "eventually removed, never removed early". A missed sweep
// is harmless; the next one catches up.
type RetentionManager struct {
	store    Store
	horizon  time.Duration
	interval time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	clock    func() time.Time
}

// NewRetentionManager constructs the sweep policy. Non-positive horizon or
// interval fall back to defaults.
func NewRetentionManager(store Store, horizon, interval time.Duration, logger *slog.Logger, m *metrics.Metrics) *RetentionManager {
	if horizon <= 0 {
		horizon = DefaultRetentionHorizon
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &RetentionManager{
		store:    store,
		horizon:  horizon,
		interval: interval,
		logger:   logger,
		metrics:  m,
		clock:    time.Now,
	}
}

// SweepOnce deletes every record older than the horizon and returns the count.
func (rm *RetentionManager) SweepOnce(ctx context.Context) (int64, error) {
	cutoff := rm.clock().UTC().Add(-rm.horizon)
	deleted, err := rm.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("expire audit records: %w: %w", sentinel.ErrStorage, err)
	}
	if deleted > 0 {
		rm.metrics.AddAuditRecordsExpired(deleted)
		rm.logger.InfoContext(ctx, "expired audit records",
			"deleted", deleted,
			"cutoff", cutoff,
		)
	}
	return deleted, nil
}

// Run sweeps on the configured interval until ctx is canceled. Sweep errors
// are logged, not fatal: retention has no deadline.
func (rm *RetentionManager) Run(ctx context.Context) error {
	ticker := time.NewTicker(rm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := rm.SweepOnce(ctx); err != nil {
				rm.logger.ErrorContext(ctx, "audit retention sweep failed", "error", err)
			}
		}
	}
}
