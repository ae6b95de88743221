// Package verification implements the two-reviewer document consensus.
// documents_verified is derived, never written directly: each flag write and
// the re-derivation happen inside one Execute call, so concurrent admin and
// faculty updates on the same application serialize and the later commit
// observes the earlier one.
package verification

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"admitflow/internal/application/models"
	"admitflow/internal/events"
	"admitflow/internal/platform/metrics"
	"admitflow/internal/platform/middleware"
	dErrors "admitflow/pkg/domain-errors"
	"admitflow/pkg/sentinel"
)

var tracer = otel.Tracer("admitflow/verification")

// Store is the slice of the application store this service needs.
type Store interface {
	Execute(ctx context.Context, id int64, validate func(*models.Application) error, mutate func(*models.Application)) (*models.Application, error)
}

// Result reports both reviewer flags and the derived consensus after a write.
type Result struct {
	AdminVerified     bool `json:"admin_verified"`
	FacultyVerified   bool `json:"faculty_verified"`
	DocumentsVerified bool `json:"documents_verified"`
}

// Service recomputes the consensus flag on every reviewer flag write.
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

// SetAdminVerified writes the admin flag and re-derives the consensus.
func (s *Service) SetAdminVerified(ctx context.Context, id int64, verified bool) (Result, error) {
	return s.setFlag(ctx, id, "admin", verified, func(a *models.Application) {
		a.AdminVerified = verified
	})
}

// SetFacultyVerified writes the faculty flag and re-derives the consensus.
func (s *Service) SetFacultyVerified(ctx context.Context, id int64, verified bool) (Result, error) {
	return s.setFlag(ctx, id, "faculty", verified, func(a *models.Application) {
		a.FacultyVerified = verified
	})
}

func (s *Service) setFlag(ctx context.Context, id int64, reviewer string, verified bool, mutate func(*models.Application)) (Result, error) {
	ctx, span := tracer.Start(ctx, "verification.setFlag")
	span.SetAttributes(
		attribute.Int64("application.id", id),
		attribute.String("reviewer", reviewer),
		attribute.Bool("verified", verified),
	)
	defer span.End()

	app, err := s.store.Execute(ctx, id, nil, mutate)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Result{}, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		if errors.Is(err, sentinel.ErrUnavailable) {
			return Result{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "store temporarily unavailable")
		}
		return Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update verification")
	}

	result := Result{
		AdminVerified:     app.AdminVerified,
		FacultyVerified:   app.FacultyVerified,
		DocumentsVerified: app.DocumentsVerified,
	}

	s.logger.InfoContext(ctx, "verification flag updated",
		"application_id", id,
		"reviewer", reviewer,
		"actor", middleware.GetActor(ctx),
		"verified", verified,
		"documents_verified", result.DocumentsVerified,
	)
	if s.metrics != nil {
		s.metrics.VerificationsRecorded.Inc()
		if result.DocumentsVerified {
			s.metrics.ConsensusReached.Inc()
		}
	}
	eventType := events.VerificationUpdated
	if result.DocumentsVerified {
		eventType = events.VerificationConsensus
	}
	if err := s.publisher.Emit(ctx, events.Event{
		Type:          eventType,
		ApplicationID: id,
		Fields:        map[string]string{"reviewer": reviewer},
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to publish verification event",
			"application_id", id, "error", err)
	}

	return result, nil
}
