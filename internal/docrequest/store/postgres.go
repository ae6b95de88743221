package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"admitflow/internal/docrequest/models"
	"admitflow/pkg/sentinel"
)

// Schema is the document_requests DDL, applied by migrations and reused by
// the integration tests.
const Schema = `
CREATE TABLE IF NOT EXISTS document_requests (
	id             BIGSERIAL PRIMARY KEY,
	application_id BIGINT NOT NULL,
	reason         TEXT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'requested',
	file_path      TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	uploaded_at    TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_document_requests_application ON document_requests (application_id);
`

const requestColumns = `id, application_id, reason, status, file_path, created_at, uploaded_at`

// Postgres persists document requests in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed request store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, req *models.Request) (int64, error) {
	if req.Status == "" {
		req.Status = models.StatusRequested
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO document_requests (application_id, reason, status, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		req.ApplicationID, req.Reason, string(req.Status), req.CreatedAt,
	).Scan(&req.ID)
	if err != nil {
		return 0, fmt.Errorf("create document request: %w", err)
	}
	return req.ID, nil
}

func (s *Postgres) FindByID(ctx context.Context, id int64) (*models.Request, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM document_requests WHERE id = $1`, id)
	return scanRequest(row)
}

func (s *Postgres) ListByApplication(ctx context.Context, applicationID int64) ([]*models.Request, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM document_requests WHERE application_id = $1 ORDER BY id ASC`,
		applicationID)
	if err != nil {
		return nil, fmt.Errorf("list document requests: %w", err)
	}
	defer rows.Close()

	var out []*models.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document requests: %w", err)
	}
	return out, nil
}

// Execute locks the request row FOR UPDATE, runs the guard on the current
// state, applies the mutation, and writes back in the same transaction.
func (s *Postgres) Execute(ctx context.Context, id int64,
	validate func(*models.Request) error,
	mutate func(*models.Request),
) (*models.Request, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM document_requests WHERE id = $1 FOR UPDATE`, id)
	req, err := scanRequest(row)
	if err != nil {
		return nil, err
	}

	if validate != nil {
		if err := validate(req); err != nil {
			return nil, err
		}
	}
	mutate(req)

	_, err = tx.ExecContext(ctx, `
		UPDATE document_requests
		SET reason = $2, status = $3, file_path = $4, uploaded_at = $5
		WHERE id = $1`,
		req.ID, req.Reason, string(req.Status), req.FilePath, req.UploadedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update document request: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return req, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*models.Request, error) {
	var (
		req      models.Request
		status   string
		filePath sql.NullString
		uploaded sql.NullTime
	)
	err := row.Scan(&req.ID, &req.ApplicationID, &req.Reason, &status, &filePath, &req.CreatedAt, &uploaded)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan document request: %w", err)
	}
	req.Status = models.Status(status)
	if filePath.Valid {
		v := filePath.String
		req.FilePath = &v
	}
	if uploaded.Valid {
		v := uploaded.Time
		req.UploadedAt = &v
	}
	return &req, nil
}
