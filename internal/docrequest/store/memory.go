// Package store persists supplementary-document requests.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"admitflow/internal/docrequest/models"
	"admitflow/pkg/sentinel"
)

// Memory is the in-memory request store for unit tests.
type Memory struct {
	mu       sync.RWMutex
	nextID   int64
	requests map[int64]*models.Request
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{requests: make(map[int64]*models.Request)}
}

func (s *Memory) Create(_ context.Context, req *models.Request) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	req.ID = s.nextID
	if req.Status == "" {
		req.Status = models.StatusRequested
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	s.requests[req.ID] = cloneRequest(req)
	return req.ID, nil
}

func (s *Memory) FindByID(_ context.Context, id int64) (*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneRequest(req), nil
}

func (s *Memory) ListByApplication(_ context.Context, applicationID int64) ([]*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Request
	for _, req := range s.requests {
		if req.ApplicationID == applicationID {
			out = append(out, cloneRequest(req))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Execute runs a validate-then-mutate sequence atomically for one request.
// A guard error leaves the record untouched.
func (s *Memory) Execute(_ context.Context, id int64,
	validate func(*models.Request) error,
	mutate func(*models.Request),
) (*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	working := cloneRequest(req)
	if validate != nil {
		if err := validate(working); err != nil {
			return nil, err
		}
	}
	mutate(working)
	s.requests[id] = working
	return cloneRequest(working), nil
}

func cloneRequest(req *models.Request) *models.Request {
	out := *req
	if req.FilePath != nil {
		v := *req.FilePath
		out.FilePath = &v
	}
	if req.UploadedAt != nil {
		v := *req.UploadedAt
		out.UploadedAt = &v
	}
	return &out
}
