package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"admitflow/internal/course/models"
	"admitflow/pkg/sentinel"
)

// Schema is the courses DDL, applied by migrations and reused by the
// integration tests.
const Schema = `
CREATE TABLE IF NOT EXISTS courses (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	department TEXT NOT NULL DEFAULT '',
	degree     TEXT NOT NULL DEFAULT '',
	seats      INT NOT NULL DEFAULT 0,
	fee        NUMERIC(12,2) NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

const courseColumns = `id, name, department, degree, seats, fee, created_at, updated_at`

// Postgres persists the catalog in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed catalog store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, course *models.Course) (int64, error) {
	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO courses (name, department, degree, seats, fee, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		course.Name, course.Department, course.Degree, course.Seats,
		course.Fee.String(), course.CreatedAt, course.UpdatedAt,
	).Scan(&course.ID)
	if err != nil {
		return 0, fmt.Errorf("create course: %w", err)
	}
	return course.ID, nil
}

func (s *Postgres) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = $1`, id)
	return scanCourse(row)
}

func (s *Postgres) List(ctx context.Context) ([]*models.Course, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+courseColumns+` FROM courses ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var out []*models.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}
	return out, nil
}

func (s *Postgres) Update(ctx context.Context, course *models.Course) (*models.Course, error) {
	course.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE courses
		SET name = $2, department = $3, degree = $4, seats = $5, fee = $6, updated_at = $7
		WHERE id = $1`,
		course.ID, course.Name, course.Department, course.Degree,
		course.Seats, course.Fee.String(), course.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	if affected == 0 {
		return nil, sentinel.ErrNotFound
	}
	return s.FindByID(ctx, course.ID)
}

func (s *Postgres) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner) (*models.Course, error) {
	var (
		course models.Course
		fee    string
	)
	err := row.Scan(&course.ID, &course.Name, &course.Department, &course.Degree,
		&course.Seats, &fee, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan course: %w", err)
	}
	parsed, err := decimal.NewFromString(fee)
	if err != nil {
		return nil, fmt.Errorf("parse course fee: %w", err)
	}
	course.Fee = parsed
	return &course, nil
}
