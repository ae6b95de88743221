// Package store persists the course catalog.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"admitflow/internal/course/models"
	"admitflow/pkg/sentinel"
)

// Memory is the in-memory catalog store for unit tests.
type Memory struct {
	mu      sync.RWMutex
	nextID  int64
	courses map[int64]*models.Course
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{courses: make(map[int64]*models.Course)}
}

func (s *Memory) Create(_ context.Context, course *models.Course) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	course.ID = s.nextID
	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now
	s.courses[course.ID] = cloneCourse(course)
	return course.ID, nil
}

func (s *Memory) FindByID(_ context.Context, id int64) (*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	course, ok := s.courses[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneCourse(course), nil
}

func (s *Memory) List(_ context.Context) ([]*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Course, 0, len(s.courses))
	for _, course := range s.courses {
		out = append(out, cloneCourse(course))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Memory) Update(_ context.Context, course *models.Course) (*models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.courses[course.ID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	course.CreatedAt = existing.CreatedAt
	course.UpdatedAt = time.Now()
	s.courses[course.ID] = cloneCourse(course)
	return cloneCourse(course), nil
}

func (s *Memory) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.courses, id)
	return nil
}

func cloneCourse(course *models.Course) *models.Course {
	out := *course
	return &out
}
