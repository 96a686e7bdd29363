package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"crmcore/internal/domain"
	"crmcore/pkg/platform/sentinel"
)

// PostgresStore persists notifications. Read-state transitions are single
// UPDATE statements, so each is atomic from the caller's perspective.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const notificationColumns = `
	id, recipient_id, triggered_by, template_key, entity_kind, entity_id,
	severity, title, is_read, read_at, created_at
`

func (s *PostgresStore) Create(ctx context.Context, n *Notification) error {
	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		n.ID,
		n.RecipientID,
		n.TriggeredBy,
		n.TemplateKey,
		nullIfEmpty(string(n.Entity.Kind)),
		nullIfEmpty(n.Entity.ID),
		string(n.Severity),
		n.Title,
		n.IsRead,
		n.ReadAt,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	n, err := scanNotification(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) ListByRecipient(ctx context.Context, recipientID uuid.UUID, onlyUnread bool, limit int) ([]*Notification, error) {
	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE recipient_id = $1 AND ($2 = false OR is_read = false)
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, query, recipientID, onlyUnread, limit)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var out []*Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

// SetRead flips one notification to read. The WHERE guard keeps re-marking an
// already read row a no-op, so read_at is only ever written on the actual
// transition.
func (s *PostgresStore) SetRead(ctx context.Context, id uuid.UUID, readAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notifications
		SET is_read = true, read_at = $2
		WHERE id = $1 AND is_read = false
	`, id, readAt)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if affected == 0 {
		return s.ensureExists(ctx, id)
	}
	return nil
}

func (s *PostgresStore) SetUnread(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notifications
		SET is_read = false, read_at = NULL
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("mark notification unread: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification unread: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) MarkAllRead(ctx context.Context, recipientID uuid.UUID, readAt time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notifications
		SET is_read = true, read_at = $2
		WHERE recipient_id = $1 AND is_read = false
	`, recipientID, readAt)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return affected, nil
}

func (s *PostgresStore) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE recipient_id = $1 AND is_read = false
	`, recipientID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM notifications
		WHERE is_read = true AND read_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete read notifications: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete read notifications: %w", err)
	}
	return deleted, nil
}

func (s *PostgresStore) ensureExists(ctx context.Context, id uuid.UUID) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM notifications WHERE id = $1`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("check notification exists: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (*Notification, error) {
	var (
		n           Notification
		triggeredBy *uuid.UUID
		kind        sql.NullString
		entityID    sql.NullString
		severity    string
		readAt      sql.NullTime
	)
	err := row.Scan(
		&n.ID,
		&n.RecipientID,
		&triggeredBy,
		&n.TemplateKey,
		&kind,
		&entityID,
		&severity,
		&n.Title,
		&n.IsRead,
		&readAt,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	n.TriggeredBy = triggeredBy
	n.Entity = domain.EntityRef{Kind: domain.EntityKind(kind.String), ID: entityID.String}
	n.Severity = Severity(severity)
	if readAt.Valid {
		t := readAt.Time
		n.ReadAt = &t
	}
	return &n, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
