package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"admitflow/internal/notification/models"
)

// Schema is the notifications DDL. The table has no UPDATE or DELETE path in
// code; the log only grows.
const Schema = `
CREATE TABLE IF NOT EXISTS notifications (
	id             BIGSERIAL PRIMARY KEY,
	application_id BIGINT,
	message        TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_notifications_application ON notifications (application_id);
`

// Postgres persists the log in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed notification store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Append(ctx context.Context, n *models.Notification) (int64, error) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO notifications (application_id, message, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`,
		n.ApplicationID, n.Message, n.CreatedAt,
	).Scan(&n.ID)
	if err != nil {
		return 0, fmt.Errorf("append notification: %w", err)
	}
	return n.ID, nil
}

func (s *Postgres) List(ctx context.Context, recipient *int64) ([]*models.Notification, error) {
	query := `SELECT id, application_id, message, created_at FROM notifications`
	args := []any{}
	if recipient != nil {
		query += ` WHERE application_id IS NULL OR application_id = $1`
		args = append(args, *recipient)
	}
	query += ` ORDER BY id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		var (
			n         models.Notification
			recipient sql.NullInt64
		)
		if err := rows.Scan(&n.ID, &recipient, &n.Message, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		if recipient.Valid {
			v := recipient.Int64
			n.ApplicationID = &v
		}
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}
