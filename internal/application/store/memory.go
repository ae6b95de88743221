// Package store provides Application persistence. The in-memory
// implementation keeps unit tests fast; the postgres implementation is the
// production store. Both serialize read-compute-write sequences per
// application through Execute.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"admitflow/internal/application/models"
	"admitflow/pkg/sentinel"
)

// Memory is an in-memory Application store guarded by a single lock, which
// trivially satisfies the per-id serialization Execute requires.
type Memory struct {
	mu     sync.RWMutex
	nextID int64
	apps   map[int64]*models.Application
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{apps: make(map[int64]*models.Application)}
}

func (s *Memory) Create(_ context.Context, app *models.Application) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	app.ID = s.nextID
	applyDefaults(app)
	s.apps[app.ID] = cloneApplication(app)
	return app.ID, nil
}

func (s *Memory) FindByID(_ context.Context, id int64) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.apps[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneApplication(app), nil
}

// FindByIDAndEmail treats a wrong email exactly like an unknown id so callers
// cannot probe for the existence of an application.
func (s *Memory) FindByIDAndEmail(_ context.Context, id int64, email string) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.apps[id]
	if !ok || app.Email != email {
		return nil, sentinel.ErrNotFound
	}
	return cloneApplication(app), nil
}

func (s *Memory) ListSubmitted(_ context.Context, filter models.Filter) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Application
	for _, app := range s.apps {
		if app.IsDraft {
			continue
		}
		if filter.CourseID != nil && app.CourseID != *filter.CourseID {
			continue
		}
		if filter.Status != nil && app.Status != *filter.Status {
			continue
		}
		out = append(out, cloneApplication(app))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Memory) ListDraftsByEmail(_ context.Context, email string) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Application
	for _, app := range s.apps {
		if app.IsDraft && app.Email == email {
			out = append(out, cloneApplication(app))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Execute runs a validate-then-mutate sequence atomically for one
// application. The write lock is held for the whole sequence, so a concurrent
// Execute on the same id observes the committed result of this one.
// A validation error leaves the record untouched.
func (s *Memory) Execute(ctx context.Context, id int64,
	validate func(*models.Application) error,
	mutate func(*models.Application),
) (*models.Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, sentinel.ErrUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.apps[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	working := cloneApplication(app)
	if validate != nil {
		if err := validate(working); err != nil {
			return nil, err
		}
	}
	mutate(working)
	working.RecomputeDocumentsVerified()
	s.apps[id] = working
	return cloneApplication(working), nil
}

func applyDefaults(app *models.Application) {
	if app.Status == "" {
		app.Status = models.StatusPending
	}
	if app.SelectionStatus == "" {
		app.SelectionStatus = models.SelectionNone
	}
	if app.PaymentStatus == "" {
		app.PaymentStatus = models.PaymentPending
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now()
	}
	app.RecomputeDocumentsVerified()
}

func cloneApplication(app *models.Application) *models.Application {
	out := *app
	out.Preferences = append([]int64(nil), app.Preferences...)
	out.Documents = models.Documents{
		Photo:        cloneString(app.Documents.Photo),
		Signature:    cloneString(app.Documents.Signature),
		Marksheet10:  cloneString(app.Documents.Marksheet10),
		Marksheet12:  cloneString(app.Documents.Marksheet12),
		EntranceCard: cloneString(app.Documents.EntranceCard),
		IDProof:      cloneString(app.Documents.IDProof),
	}
	out.InterviewDate = cloneTime(app.InterviewDate)
	out.AdmitCardPath = cloneString(app.AdmitCardPath)
	out.PaymentID = cloneString(app.PaymentID)
	out.PaymentDate = cloneTime(app.PaymentDate)
	out.ReceiptPath = cloneString(app.ReceiptPath)
	return &out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
