package admitcard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	appmodels "admitflow/internal/application/models"
	coursemodels "admitflow/internal/course/models"
	"admitflow/internal/events"
	"admitflow/internal/files"
	"admitflow/internal/platform/metrics"
	dErrors "admitflow/pkg/domain-errors"
	"admitflow/pkg/sentinel"
)

// DefaultVenue is printed on cards when no venue is configured.
const DefaultVenue = "Admissions Office, Main Campus"

// Store is the application persistence slice the service needs.
type Store interface {
	Execute(ctx context.Context, id int64, validate func(*appmodels.Application) error, mutate func(*appmodels.Application)) (*appmodels.Application, error)
}

// CourseFinder resolves course names for the card.
type CourseFinder interface {
	FindByID(ctx context.Context, id int64) (*coursemodels.Course, error)
}

// ArtifactStore persists rendered cards.
type ArtifactStore interface {
	SaveArtifact(subdir, name string, data []byte) (string, error)
}

// Service schedules interviews and issues admit cards.
type Service struct {
	store     Store
	courses   CourseFinder
	renderer  Renderer
	artifacts ArtifactStore
	venue     string
	logger    *slog.Logger
	metrics   *metrics.Metrics
	publisher events.Publisher
	now       func() time.Time
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

// WithVenue overrides the printed interview venue.
func WithVenue(venue string) Option {
	return func(s *Service) {
		if venue != "" {
			s.venue = venue
		}
	}
}

// WithClock sets the clock function for testability.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service.
func New(store Store, courses CourseFinder, renderer Renderer, artifacts ArtifactStore, opts ...Option) *Service {
	s := &Service{
		store:     store,
		courses:   courses,
		renderer:  renderer,
		artifacts: artifacts,
		venue:     DefaultVenue,
		publisher: events.Noop{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// ScheduleInterview records the interview date and issues the admit card in
// the same call. Any date is accepted, past ones included; rescheduling after
// the fact is an office workflow, not ours to police. Scheduling succeeds even
// if rendering fails; the card can be regenerated later with Generate.
func (s *Service) ScheduleInterview(ctx context.Context, applicationID int64, at time.Time) (*appmodels.Application, error) {
	app, err := s.store.Execute(ctx, applicationID,
		func(a *appmodels.Application) error {
			if a.IsDraft {
				return sentinel.ErrInvalidState
			}
			return nil
		},
		func(a *appmodels.Application) {
			t := at
			a.InterviewDate = &t
		},
	)
	if err != nil {
		return nil, translateErr(err, "an interview cannot be scheduled for a draft")
	}

	s.logger.InfoContext(ctx, "interview scheduled",
		"application_id", applicationID,
		"interview_date", at,
	)
	s.emit(ctx, events.InterviewScheduled, applicationID, map[string]string{
		"interview_date": at.Format(time.RFC3339),
	})

	updated, err := s.issueCard(ctx, app)
	if err != nil {
		s.logger.ErrorContext(ctx, "admit card generation failed after scheduling",
			"application_id", applicationID, "error", err)
		return app, nil
	}
	return updated, nil
}

// Generate renders the admit card for an already scheduled interview. Unlike
// the scheduling path, a missing interview date here is an error.
func (s *Service) Generate(ctx context.Context, applicationID int64) (*appmodels.Application, error) {
	app, err := s.store.Execute(ctx, applicationID,
		func(a *appmodels.Application) error {
			if a.InterviewDate == nil {
				return sentinel.ErrInvalidState
			}
			return nil
		},
		func(*appmodels.Application) {},
	)
	if err != nil {
		return nil, translateErr(err, "no interview has been scheduled for this application")
	}
	return s.issueCard(ctx, app)
}

// issueCard renders the PDF, stores it, and persists the path.
func (s *Service) issueCard(ctx context.Context, app *appmodels.Application) (*appmodels.Application, error) {
	card := Card{
		ApplicationID: app.ID,
		StudentName:   app.StudentName,
		CourseName:    s.courseName(ctx, app.CourseID),
		InterviewDate: *app.InterviewDate,
		Venue:         s.venue,
		PhotoPath:     app.Documents.Photo,
	}

	data, err := s.renderer.Render(card)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render admit card")
	}

	name := fmt.Sprintf("admitcard-%d-%d.pdf", app.ID, s.now().UnixMilli())
	path, err := s.artifacts.SaveArtifact(files.AdmitCardDir, name, data)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store admit card")
	}

	updated, err := s.store.Execute(ctx, app.ID, nil,
		func(a *appmodels.Application) {
			p := path
			a.AdmitCardPath = &p
		},
	)
	if err != nil {
		return nil, translateErr(err, "")
	}

	s.logger.InfoContext(ctx, "admit card issued",
		"application_id", app.ID,
		"path", path,
	)
	if s.metrics != nil {
		s.metrics.AdmitCardsGenerated.Inc()
	}
	s.emit(ctx, events.AdmitCardIssued, app.ID, map[string]string{"path": path})
	return updated, nil
}

func (s *Service) courseName(ctx context.Context, courseID int64) string {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return fmt.Sprintf("Course %d", courseID)
	}
	return course.Name
}

func (s *Service) emit(ctx context.Context, eventType events.Type, applicationID int64, fields map[string]string) {
	if err := s.publisher.Emit(ctx, events.Event{
		Type:          eventType,
		ApplicationID: applicationID,
		Fields:        fields,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to publish admit card event",
			"application_id", applicationID, "error", err)
	}
}

func translateErr(err error, conflictMsg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeConflict, conflictMsg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "application store failure")
	}
}
