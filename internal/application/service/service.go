// Package service orchestrates the Application lifecycle: intake, lookup,
// review status, selection, and document slot updates. Verification, payment,
// and admit-card flows build on the same store but live in their own
// verticals.
package service

import (
	"context"
	"errors"
	"log/slog"

	"admitflow/internal/application/models"
	"admitflow/internal/events"
	"admitflow/internal/platform/metrics"
	"admitflow/internal/platform/middleware"
	dErrors "admitflow/pkg/domain-errors"
	"admitflow/pkg/sentinel"
)

// Store is the Application persistence contract. Execute must serialize the
// whole validate-then-mutate sequence per application id.
type Store interface {
	Create(ctx context.Context, app *models.Application) (int64, error)
	FindByID(ctx context.Context, id int64) (*models.Application, error)
	FindByIDAndEmail(ctx context.Context, id int64, email string) (*models.Application, error)
	ListSubmitted(ctx context.Context, filter models.Filter) ([]*models.Application, error)
	ListDraftsByEmail(ctx context.Context, email string) ([]*models.Application, error)
	Execute(ctx context.Context, id int64, validate func(*models.Application) error, mutate func(*models.Application)) (*models.Application, error)
}

// Service orchestrates application intake and officer/admin mutations.
type Service struct {
	store     Store
	logger    *slog.Logger
	metrics   *metrics.Metrics
	publisher events.Publisher
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// New constructs a Service.
func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, publisher: events.Noop{}}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Submit persists a new application. Required-field validation applies only to
// final submissions; drafts may be sparse.
func (s *Service) Submit(ctx context.Context, app *models.Application, isDraft bool) (int64, error) {
	app.IsDraft = isDraft
	if !isDraft {
		if err := app.ValidateForSubmission(); err != nil {
			return 0, err
		}
	}

	id, err := s.store.Create(ctx, app)
	if err != nil {
		return 0, translateStoreErr(err, "failed to save application")
	}

	device := middleware.GetClientDevice(ctx)
	s.logger.InfoContext(ctx, "application received",
		"application_id", id,
		"draft", isDraft,
		"course_id", app.CourseID,
		"client_browser", device.Browser,
		"client_os", device.OS,
	)
	if isDraft {
		s.count(func(m *metrics.Metrics) { m.DraftsSaved.Inc() })
	} else {
		s.count(func(m *metrics.Metrics) { m.ApplicationsSubmitted.Inc() })
		s.emit(ctx, events.ApplicationSubmitted, id, nil)
	}
	return id, nil
}

// Get returns one application by id.
func (s *Service) Get(ctx context.Context, id int64) (*models.Application, error) {
	app, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, translateStoreErr(err, "failed to load application")
	}
	return app, nil
}

// Lookup returns the application matching both id and email. A wrong email is
// indistinguishable from an unknown id.
func (s *Service) Lookup(ctx context.Context, id int64, email string) (*models.Application, error) {
	if id == 0 || email == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "application id and email are required")
	}
	app, err := s.store.FindByIDAndEmail(ctx, id, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no application found for this id and email")
		}
		return nil, translateStoreErr(err, "failed to load application")
	}
	return app, nil
}

// ListSubmitted returns all non-draft applications ordered by id.
func (s *Service) ListSubmitted(ctx context.Context, filter models.Filter) ([]*models.Application, error) {
	apps, err := s.store.ListSubmitted(ctx, filter)
	if err != nil {
		return nil, translateStoreErr(err, "failed to list applications")
	}
	return apps, nil
}

// ListDrafts returns an applicant's drafts, newest first.
func (s *Service) ListDrafts(ctx context.Context, email string) ([]*models.Application, error) {
	if email == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "email is required")
	}
	drafts, err := s.store.ListDraftsByEmail(ctx, email)
	if err != nil {
		return nil, translateStoreErr(err, "failed to list drafts")
	}
	return drafts, nil
}

// UpdateStatus records the admin review disposition. Only approved and
// rejected are settable; pending is the initial state.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status models.Status) (*models.Application, error) {
	if !models.ValidStatus(status) {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid status value")
	}
	app, err := s.store.Execute(ctx, id, nil, func(a *models.Application) {
		a.Status = status
	})
	if err != nil {
		return nil, translateStoreErr(err, "failed to update status")
	}
	s.emit(ctx, events.StatusChanged, id, map[string]string{"status": string(status)})
	return app, nil
}

// SetSelection records the officer's disposition for one applicant. Ranking
// never does this implicitly.
func (s *Service) SetSelection(ctx context.Context, id int64, selection models.SelectionStatus) (*models.Application, error) {
	if !models.ValidSelection(selection) {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid selection status")
	}
	app, err := s.store.Execute(ctx, id, nil, func(a *models.Application) {
		a.SelectionStatus = selection
	})
	if err != nil {
		return nil, translateStoreErr(err, "failed to update selection")
	}
	s.emit(ctx, events.SelectionChanged, id, map[string]string{"selection": string(selection)})
	return app, nil
}

// AttachDocument stores the uploaded file path in the named slot and returns
// the path it replaced so the caller can clean up the orphaned file.
func (s *Service) AttachDocument(ctx context.Context, id int64, field models.DocumentField, path string) (previous *string, err error) {
	_, err = s.store.Execute(ctx, id, nil, func(a *models.Application) {
		previous = a.Documents.Set(field, path)
	})
	if err != nil {
		return nil, translateStoreErr(err, "failed to attach document")
	}
	return previous, nil
}

func (s *Service) count(fn func(*metrics.Metrics)) {
	if s.metrics != nil {
		fn(s.metrics)
	}
}

func (s *Service) emit(ctx context.Context, eventType events.Type, applicationID int64, fields map[string]string) {
	if err := s.publisher.Emit(ctx, events.Event{
		Type:          eventType,
		ApplicationID: applicationID,
		Fields:        fields,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to publish lifecycle event",
			"event", string(eventType),
			"application_id", applicationID,
			"error", err,
		)
	}
}

// translateStoreErr converts store sentinels into domain errors so no raw
// infrastructure fault escapes the service boundary. Already-coded errors
// pass through unchanged.
func translateStoreErr(err error, message string) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	case errors.Is(err, sentinel.ErrConflict), errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(err, dErrors.CodeConflict, message)
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "store temporarily unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, message)
	}
}
