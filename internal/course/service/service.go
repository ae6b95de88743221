// Package service exposes the course catalog. Reads are public; writes are
// admin-only, enforced at the router.
package service

import (
	"context"
	"errors"
	"log/slog"

	"admitflow/internal/course/models"
	"admitflow/internal/course/store"
	dErrors "admitflow/pkg/domain-errors"
	"admitflow/pkg/sentinel"
)

// Service manages the catalog.
type Service struct {
	store  store.Catalog
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New constructs a Service.
func New(catalog store.Catalog, opts ...Option) *Service {
	s := &Service{store: catalog}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Create adds a course to the catalog.
func (s *Service) Create(ctx context.Context, course *models.Course) (*models.Course, error) {
	if err := course.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.Create(ctx, course); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create course")
	}
	s.logger.InfoContext(ctx, "course created", "course_id", course.ID, "name", course.Name)
	return course, nil
}

// Get returns one course.
func (s *Service) Get(ctx context.Context, id int64) (*models.Course, error) {
	course, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, translateErr(err)
	}
	return course, nil
}

// List returns the full catalog, id ascending.
func (s *Service) List(ctx context.Context) ([]*models.Course, error) {
	courses, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list courses")
	}
	return courses, nil
}

// Update replaces a course's mutable fields.
func (s *Service) Update(ctx context.Context, course *models.Course) (*models.Course, error) {
	if err := course.Validate(); err != nil {
		return nil, err
	}
	updated, err := s.store.Update(ctx, course)
	if err != nil {
		return nil, translateErr(err)
	}
	s.logger.InfoContext(ctx, "course updated", "course_id", course.ID)
	return updated, nil
}

// Delete removes a course from the catalog.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return translateErr(err)
	}
	s.logger.InfoContext(ctx, "course deleted", "course_id", id)
	return nil
}

func translateErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "course not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "course store failure")
}
