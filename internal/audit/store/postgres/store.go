package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"crmcore/internal/audit"
	"crmcore/internal/domain"
)

// Store persists audit records in PostgreSQL. The audit_records table is
// INSERT-only from the request path; the only DELETE is the retention sweep.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL-backed audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectColumns = `
	id, actor_id, entity_kind, entity_id, action,
	old_state, new_state, ip, user_agent, created_at
`

// Append inserts one audit record. State snapshots arrive pre-redacted from
// the recorder and are stored as JSONB.
func (s *Store) Append(ctx context.Context, rec *audit.Record) error {
	oldState, err := marshalState(rec.OldState)
	if err != nil {
		return fmt.Errorf("marshal old state: %w", err)
	}
	newState, err := marshalState(rec.NewState)
	if err != nil {
		return fmt.Errorf("marshal new state: %w", err)
	}

	query := `
		INSERT INTO audit_records (
			id, actor_id, entity_kind, entity_id, action,
			old_state, new_state, ip, user_agent, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.db.ExecContext(ctx, query,
		rec.ID,
		rec.ActorID,
		string(rec.Entity.Kind),
		rec.Entity.ID,
		string(rec.Action),
		oldState,
		newState,
		rec.IP,
		rec.UserAgent,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// ListRecent returns the N newest records.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]*audit.Record, error) {
	query := `SELECT ` + selectColumns + `
		FROM audit_records
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListByEntity returns the trail for one (kind, id) pair, newest first.
func (s *Store) ListByEntity(ctx context.Context, ref domain.EntityRef) ([]*audit.Record, error) {
	query := `SELECT ` + selectColumns + `
		FROM audit_records
		WHERE entity_kind = $1 AND entity_id = $2
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, string(ref.Kind), ref.ID)
	if err != nil {
		return nil, fmt.Errorf("query audit records by entity: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListByActor returns every record caused by one user, newest first.
func (s *Store) ListByActor(ctx context.Context, actorID uuid.UUID) ([]*audit.Record, error) {
	query := `SELECT ` + selectColumns + `
		FROM audit_records
		WHERE actor_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, actorID)
	if err != nil {
		return nil, fmt.Errorf("query audit records by actor: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// DeleteOlderThan removes records past the retention cutoff and returns the
// number deleted.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM audit_records WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired audit records: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count expired audit records: %w", err)
	}
	return deleted, nil
}

func marshalState(state map[string]any) ([]byte, error) {
	if state == nil {
		return nil, nil
	}
	return json.Marshal(state)
}

func scanRecords(rows *sql.Rows) ([]*audit.Record, error) {
	var records []*audit.Record

	for rows.Next() {
		var (
			rec        audit.Record
			kind       string
			action     string
			oldState   []byte
			newState   []byte
			ip         sql.NullString
			userAgent  sql.NullString
		)
		err := rows.Scan(
			&rec.ID,
			&rec.ActorID,
			&kind,
			&rec.Entity.ID,
			&action,
			&oldState,
			&newState,
			&ip,
			&userAgent,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}

		rec.Entity.Kind = domain.EntityKind(kind)
		rec.Action = audit.Action(action)
		rec.IP = ip.String
		rec.UserAgent = userAgent.String
		if len(oldState) > 0 {
			if err := json.Unmarshal(oldState, &rec.OldState); err != nil {
				return nil, fmt.Errorf("unmarshal old state: %w", err)
			}
		}
		if len(newState) > 0 {
			if err := json.Unmarshal(newState, &rec.NewState); err != nil {
				return nil, fmt.Errorf("unmarshal new state: %w", err)
			}
		}

		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return records, nil
}
