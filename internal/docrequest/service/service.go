// Package service runs the supplementary-document workflow. The machine is
// strictly linear: requested → uploaded → approved. Out-of-order transitions
// are conflicts and mutate nothing.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	appmodels "admitflow/internal/application/models"
	"admitflow/internal/docrequest/models"
	"admitflow/internal/events"
	"admitflow/internal/platform/metrics"
	dErrors "admitflow/pkg/domain-errors"
	"admitflow/pkg/sentinel"
)

// Store is the request persistence contract.
type Store interface {
	Create(ctx context.Context, req *models.Request) (int64, error)
	FindByID(ctx context.Context, id int64) (*models.Request, error)
	ListByApplication(ctx context.Context, applicationID int64) ([]*models.Request, error)
	Execute(ctx context.Context, id int64, validate func(*models.Request) error, mutate func(*models.Request)) (*models.Request, error)
}

// ApplicationFinder checks that the owning application exists before a
// request is opened.
type ApplicationFinder interface {
	FindByID(ctx context.Context, id int64) (*appmodels.Application, error)
}

// Service orchestrates the document-request lifecycle.
type Service struct {
	store     Store
	apps      ApplicationFinder
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

// WithClock sets the clock function for testability.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service.
func New(store Store, apps ApplicationFinder, opts ...Option) *Service {
	s := &Service{store: store, apps: apps, publisher: events.Noop{}, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Request opens a new supplementary-document request against an application.
func (s *Service) Request(ctx context.Context, applicationID int64, reason string) (*models.Request, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "a reason is required")
	}

	if _, err := s.apps.FindByID(ctx, applicationID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}

	req := &models.Request{
		ApplicationID: applicationID,
		Reason:        reason,
		Status:        models.StatusRequested,
		CreatedAt:     s.now(),
	}
	if _, err := s.store.Create(ctx, req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create document request")
	}

	s.logger.InfoContext(ctx, "document requested",
		"application_id", applicationID,
		"request_id", req.ID,
	)
	if s.metrics != nil {
		s.metrics.DocumentRequestsOpened.Inc()
	}
	s.emit(ctx, events.DocumentRequested, req)
	return req, nil
}

// Upload attaches the stored file path; valid only from requested.
func (s *Service) Upload(ctx context.Context, requestID int64, filePath string) (*models.Request, error) {
	if filePath == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "a file is required")
	}
	uploadedAt := s.now()
	req, err := s.store.Execute(ctx, requestID,
		func(r *models.Request) error { return r.CanUpload() },
		func(r *models.Request) {
			path := filePath
			at := uploadedAt
			r.FilePath = &path
			r.UploadedAt = &at
			r.Status = models.StatusUploaded
		},
	)
	if err != nil {
		return nil, translateErr(err, "upload is only valid on a requested document")
	}
	s.emit(ctx, events.DocumentUploaded, req)
	return req, nil
}

// Approve closes the request; valid only from uploaded.
func (s *Service) Approve(ctx context.Context, requestID int64) (*models.Request, error) {
	req, err := s.store.Execute(ctx, requestID,
		func(r *models.Request) error { return r.CanApprove() },
		func(r *models.Request) {
			r.Status = models.StatusApproved
		},
	)
	if err != nil {
		return nil, translateErr(err, "approve is only valid on an uploaded document")
	}
	s.emit(ctx, events.DocumentApproved, req)
	return req, nil
}

// Get returns one request by id.
func (s *Service) Get(ctx context.Context, requestID int64) (*models.Request, error) {
	req, err := s.store.FindByID(ctx, requestID)
	if err != nil {
		return nil, translateErr(err, "failed to load document request")
	}
	return req, nil
}

// ListByApplication returns an application's requests, oldest first.
func (s *Service) ListByApplication(ctx context.Context, applicationID int64) ([]*models.Request, error) {
	reqs, err := s.store.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list document requests")
	}
	return reqs, nil
}

func (s *Service) emit(ctx context.Context, eventType events.Type, req *models.Request) {
	if err := s.publisher.Emit(ctx, events.Event{
		Type:          eventType,
		ApplicationID: req.ApplicationID,
		Fields:        map[string]string{"request_id": intString(req.ID)},
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to publish document event",
			"request_id", req.ID, "error", err)
	}
}

func translateErr(err error, conflictMsg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "document request not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeConflict, conflictMsg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "document request store failure")
	}
}

func intString(id int64) string {
	return strconv.FormatInt(id, 10)
}
