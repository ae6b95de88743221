package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"admitflow/internal/application/models"
	"admitflow/pkg/sentinel"
)

// Schema is the applications DDL, applied by migrations and reused by the
// integration tests.
const Schema = `
CREATE TABLE IF NOT EXISTS applications (
	id                 BIGSERIAL PRIMARY KEY,
	student_name       TEXT NOT NULL DEFAULT '',
	email              TEXT NOT NULL DEFAULT '',
	phone              TEXT NOT NULL DEFAULT '',
	date_of_birth      TEXT NOT NULL DEFAULT '',
	gender             TEXT NOT NULL DEFAULT '',
	address            TEXT NOT NULL DEFAULT '',
	city               TEXT NOT NULL DEFAULT '',
	state              TEXT NOT NULL DEFAULT '',
	pincode            TEXT NOT NULL DEFAULT '',
	qualification      TEXT NOT NULL DEFAULT '',
	percentage         TEXT NOT NULL DEFAULT '',
	exam_name          TEXT NOT NULL DEFAULT '',
	exam_rank          TEXT NOT NULL DEFAULT '',
	course_id          BIGINT NOT NULL DEFAULT 0,
	pref1              BIGINT,
	pref2              BIGINT,
	pref3              BIGINT,
	photo_path         TEXT,
	signature_path     TEXT,
	marksheet10_path   TEXT,
	marksheet12_path   TEXT,
	entrance_card_path TEXT,
	id_proof_path      TEXT,
	is_draft           BOOLEAN NOT NULL DEFAULT FALSE,
	status             TEXT NOT NULL DEFAULT 'pending',
	admin_verified     BOOLEAN NOT NULL DEFAULT FALSE,
	faculty_verified   BOOLEAN NOT NULL DEFAULT FALSE,
	documents_verified BOOLEAN NOT NULL DEFAULT FALSE,
	selection_status   TEXT NOT NULL DEFAULT 'none',
	interview_date     TIMESTAMPTZ,
	admit_card_path    TEXT,
	payment_status     TEXT NOT NULL DEFAULT 'pending',
	payment_amount     NUMERIC(12,2),
	payment_id         TEXT,
	payment_date       TIMESTAMPTZ,
	receipt_path       TEXT,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_applications_email ON applications (email);
CREATE INDEX IF NOT EXISTS idx_applications_course ON applications (course_id);
`

const appColumns = `id, student_name, email, phone, date_of_birth, gender, address, city, state, pincode,
	qualification, percentage, exam_name, exam_rank, course_id, pref1, pref2, pref3,
	photo_path, signature_path, marksheet10_path, marksheet12_path, entrance_card_path, id_proof_path,
	is_draft, status, admin_verified, faculty_verified, documents_verified,
	selection_status, interview_date, admit_card_path,
	payment_status, payment_amount, payment_id, payment_date, receipt_path, created_at`

// Postgres persists Applications in PostgreSQL. Execute uses a row lock so
// concurrent read-compute-write sequences on the same application serialize.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed Application store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, app *models.Application) (int64, error) {
	applyDefaults(app)

	var prefs [3]sql.NullInt64
	for i, p := range app.Preferences {
		if i >= len(prefs) {
			break
		}
		prefs[i] = sql.NullInt64{Int64: p, Valid: true}
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO applications (
			student_name, email, phone, date_of_birth, gender, address, city, state, pincode,
			qualification, percentage, exam_name, exam_rank, course_id, pref1, pref2, pref3,
			photo_path, signature_path, marksheet10_path, marksheet12_path, entrance_card_path, id_proof_path,
			is_draft, status, admin_verified, faculty_verified, documents_verified,
			selection_status, payment_status, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31)
		RETURNING id`,
		app.StudentName, app.Email, app.Phone, app.DateOfBirth, app.Gender,
		app.Address, app.City, app.State, app.Pincode,
		app.Qualification, app.Percentage, app.ExamName, app.ExamRank,
		app.CourseID, prefs[0], prefs[1], prefs[2],
		app.Documents.Photo, app.Documents.Signature, app.Documents.Marksheet10,
		app.Documents.Marksheet12, app.Documents.EntranceCard, app.Documents.IDProof,
		app.IsDraft, string(app.Status), app.AdminVerified, app.FacultyVerified, app.DocumentsVerified,
		string(app.SelectionStatus), string(app.PaymentStatus), app.CreatedAt,
	).Scan(&app.ID)
	if err != nil {
		return 0, storeErr("create application", err)
	}
	return app.ID, nil
}

func (s *Postgres) FindByID(ctx context.Context, id int64) (*models.Application, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+appColumns+` FROM applications WHERE id = $1`, id)
	return scanApplication(row)
}

// FindByIDAndEmail matches on both fields inside the query itself, so a wrong
// email and an unknown id produce the same ErrNotFound.
func (s *Postgres) FindByIDAndEmail(ctx context.Context, id int64, email string) (*models.Application, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+appColumns+` FROM applications WHERE id = $1 AND email = $2`, id, email)
	return scanApplication(row)
}

func (s *Postgres) ListSubmitted(ctx context.Context, filter models.Filter) ([]*models.Application, error) {
	query := `SELECT ` + appColumns + ` FROM applications WHERE is_draft = FALSE`
	args := []any{}
	if filter.CourseID != nil {
		args = append(args, *filter.CourseID)
		query += fmt.Sprintf(" AND course_id = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list submitted", err)
	}
	defer rows.Close()
	return collectApplications(rows)
}

func (s *Postgres) ListDraftsByEmail(ctx context.Context, email string) ([]*models.Application, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+appColumns+` FROM applications
		 WHERE is_draft = TRUE AND email = $1
		 ORDER BY created_at DESC, id DESC`, email)
	if err != nil {
		return nil, storeErr("list drafts", err)
	}
	defer rows.Close()
	return collectApplications(rows)
}

// Execute locks the application row FOR UPDATE, runs validate on the current
// state, applies mutate, re-derives documents_verified, and writes everything
// back in the same transaction. Any error rolls the whole sequence back.
func (s *Postgres) Execute(ctx context.Context, id int64,
	validate func(*models.Application) error,
	mutate func(*models.Application),
) (*models.Application, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeErr("begin tx", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx,
		`SELECT `+appColumns+` FROM applications WHERE id = $1 FOR UPDATE`, id)
	app, err := scanApplication(row)
	if err != nil {
		return nil, err
	}

	if validate != nil {
		if err := validate(app); err != nil {
			return nil, err
		}
	}
	mutate(app)
	app.RecomputeDocumentsVerified()

	var prefs [3]sql.NullInt64
	for i, p := range app.Preferences {
		if i >= len(prefs) {
			break
		}
		prefs[i] = sql.NullInt64{Int64: p, Valid: true}
	}
	var amount decimal.NullDecimal
	if !app.PaymentAmount.IsZero() {
		amount = decimal.NullDecimal{Decimal: app.PaymentAmount, Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE applications SET
			student_name = $2, email = $3, phone = $4, date_of_birth = $5, gender = $6,
			address = $7, city = $8, state = $9, pincode = $10,
			qualification = $11, percentage = $12, exam_name = $13, exam_rank = $14,
			course_id = $15, pref1 = $16, pref2 = $17, pref3 = $18,
			photo_path = $19, signature_path = $20, marksheet10_path = $21,
			marksheet12_path = $22, entrance_card_path = $23, id_proof_path = $24,
			is_draft = $25, status = $26, admin_verified = $27, faculty_verified = $28,
			documents_verified = $29, selection_status = $30, interview_date = $31,
			admit_card_path = $32, payment_status = $33, payment_amount = $34,
			payment_id = $35, payment_date = $36, receipt_path = $37
		WHERE id = $1`,
		app.ID, app.StudentName, app.Email, app.Phone, app.DateOfBirth, app.Gender,
		app.Address, app.City, app.State, app.Pincode,
		app.Qualification, app.Percentage, app.ExamName, app.ExamRank,
		app.CourseID, prefs[0], prefs[1], prefs[2],
		app.Documents.Photo, app.Documents.Signature, app.Documents.Marksheet10,
		app.Documents.Marksheet12, app.Documents.EntranceCard, app.Documents.IDProof,
		app.IsDraft, string(app.Status), app.AdminVerified, app.FacultyVerified,
		app.DocumentsVerified, string(app.SelectionStatus), app.InterviewDate,
		app.AdmitCardPath, string(app.PaymentStatus), amount,
		app.PaymentID, app.PaymentDate, app.ReceiptPath,
	)
	if err != nil {
		return nil, storeErr("update application", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storeErr("commit", err)
	}
	return app, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var (
		app    models.Application
		prefs  [3]sql.NullInt64
		docs   [6]sql.NullString
		ivDate sql.NullTime
		admit  sql.NullString
		amount decimal.NullDecimal
		payID  sql.NullString
		payAt  sql.NullTime
		rcpt   sql.NullString
		status, selection, payment string
	)

	err := row.Scan(
		&app.ID, &app.StudentName, &app.Email, &app.Phone, &app.DateOfBirth, &app.Gender,
		&app.Address, &app.City, &app.State, &app.Pincode,
		&app.Qualification, &app.Percentage, &app.ExamName, &app.ExamRank,
		&app.CourseID, &prefs[0], &prefs[1], &prefs[2],
		&docs[0], &docs[1], &docs[2], &docs[3], &docs[4], &docs[5],
		&app.IsDraft, &status, &app.AdminVerified, &app.FacultyVerified, &app.DocumentsVerified,
		&selection, &ivDate, &admit,
		&payment, &amount, &payID, &payAt, &rcpt, &app.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, storeErr("scan application", err)
	}

	for _, p := range prefs {
		if p.Valid {
			app.Preferences = append(app.Preferences, p.Int64)
		}
	}
	app.Documents = models.Documents{
		Photo:        nullString(docs[0]),
		Signature:    nullString(docs[1]),
		Marksheet10:  nullString(docs[2]),
		Marksheet12:  nullString(docs[3]),
		EntranceCard: nullString(docs[4]),
		IDProof:      nullString(docs[5]),
	}
	app.Status = models.Status(status)
	app.SelectionStatus = models.SelectionStatus(selection)
	app.PaymentStatus = models.PaymentStatus(payment)
	app.InterviewDate = nullTime(ivDate)
	app.AdmitCardPath = nullString(admit)
	if amount.Valid {
		app.PaymentAmount = amount.Decimal
	}
	app.PaymentID = nullString(payID)
	app.PaymentDate = nullTime(payAt)
	app.ReceiptPath = nullString(rcpt)
	return &app, nil
}

func collectApplications(rows *sql.Rows) ([]*models.Application, error) {
	var out []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate applications", err)
	}
	return out, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

// storeErr keeps transport of infrastructure facts uniform: timeouts and
// connectivity failures surface as retryable, everything else wraps the
// operation name.
func storeErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, sentinel.ErrUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}
