// Package service exposes the notice board. Posting is reviewer-side; reading
// is open. Whether readers see only their own notices is a deployment choice.
package service

import (
	"context"
	"log/slog"
	"strings"

	"admitflow/internal/events"
	"admitflow/internal/notification/models"
	"admitflow/internal/platform/metrics"
	dErrors "admitflow/pkg/domain-errors"
)

// Store is the log persistence contract.
type Store interface {
	Append(ctx context.Context, n *models.Notification) (int64, error)
	List(ctx context.Context, recipient *int64) ([]*models.Notification, error)
}

// Service appends to and reads the notification log.
type Service struct {
	store Store
	// scoped limits reads to broadcasts plus the caller's own notices.
	// Off by default: the board has always been public to applicants.
	scoped    bool
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

// WithScopedReads makes ReadAll honor the recipient filter.
func WithScopedReads(scoped bool) Option {
	return func(s *Service) { s.scoped = scoped }
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

// Append posts a notification. A nil applicationID posts a broadcast.
func (s *Service) Append(ctx context.Context, applicationID *int64, message string) (*models.Notification, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "a message is required")
	}

	n := &models.Notification{ApplicationID: applicationID, Message: message}
	if _, err := s.store.Append(ctx, n); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to append notification")
	}

	if s.metrics != nil {
		s.metrics.NotificationsAppended.Inc()
	}
	event := events.Event{Type: events.NotificationPosted}
	if applicationID != nil {
		event.ApplicationID = *applicationID
	}
	if err := s.publisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish notification event",
			"notification_id", n.ID, "error", err)
	}
	return n, nil
}

// Note is the fire-and-forget posting surface other services use.
func (s *Service) Note(ctx context.Context, applicationID *int64, message string) error {
	_, err := s.Append(ctx, applicationID, message)
	return err
}

// ReadAll returns notifications newest first. When scoped reads are off the
// recipient is ignored and the whole log is returned.
func (s *Service) ReadAll(ctx context.Context, recipient *int64) ([]*models.Notification, error) {
	if !s.scoped {
		recipient = nil
	}
	items, err := s.store.List(ctx, recipient)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notifications")
	}
	return items, nil
}
