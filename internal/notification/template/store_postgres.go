package template

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"crmcore/pkg/platform/sentinel"
)

// PostgresStore persists the template catalog. Key uniqueness rides on the
// primary key; upsert keeps seeding idempotent.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Upsert(ctx context.Context, t *Template) error {
	query := `
		INSERT INTO notification_templates (key, text, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO UPDATE SET
			text = EXCLUDED.text,
			description = EXCLUDED.description,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query, t.Key, t.Text, t.Description, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert template: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, key string) (*Template, error) {
	var t Template
	query := `
		SELECT key, text, description, created_at, updated_at
		FROM notification_templates
		WHERE key = $1
	`
	err := s.db.QueryRowContext(ctx, query, key).
		Scan(&t.Key, &t.Text, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find template: %w", err)
	}
	return &t, nil
}
