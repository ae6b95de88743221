// Package store persists the append-only notification log.
package store

import (
	"context"
	"sync"
	"time"

	"admitflow/internal/notification/models"
)

// Memory is the in-memory notification store for unit tests.
type Memory struct {
	mu     sync.RWMutex
	nextID int64
	items  []*models.Notification
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (s *Memory) Append(_ context.Context, n *models.Notification) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	n.ID = s.nextID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	s.items = append(s.items, cloneNotification(n))
	return n.ID, nil
}

// List returns notifications newest first. A nil recipient returns the whole
// log; otherwise broadcasts plus entries addressed to that application.
func (s *Memory) List(_ context.Context, recipient *int64) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Notification
	for i := len(s.items) - 1; i >= 0; i-- {
		n := s.items[i]
		if recipient != nil && n.ApplicationID != nil && *n.ApplicationID != *recipient {
			continue
		}
		out = append(out, cloneNotification(n))
	}
	return out, nil
}

func cloneNotification(n *models.Notification) *models.Notification {
	out := *n
	if n.ApplicationID != nil {
		v := *n.ApplicationID
		out.ApplicationID = &v
	}
	return &out
}
