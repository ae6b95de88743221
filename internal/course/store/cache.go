package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"admitflow/internal/course/models"
	"admitflow/internal/platform/redis"
)

const (
	catalogKey   = "courses:all"
	coursePrefix = "courses:id:"
)

// Cached is a read-through cache over another catalog store. Reads consult
// Redis first; every write invalidates. Cache failures degrade to the
// underlying store rather than failing the request.
type Cached struct {
	inner  Catalog
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// Catalog is the store contract Cached wraps.
type Catalog interface {
	Create(ctx context.Context, course *models.Course) (int64, error)
	FindByID(ctx context.Context, id int64) (*models.Course, error)
	List(ctx context.Context) ([]*models.Course, error)
	Update(ctx context.Context, course *models.Course) (*models.Course, error)
	Delete(ctx context.Context, id int64) error
}

// NewCached wraps inner with a Redis read-through cache.
func NewCached(inner Catalog, client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (s *Cached) Create(ctx context.Context, course *models.Course) (int64, error) {
	id, err := s.inner.Create(ctx, course)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, id)
	return id, nil
}

func (s *Cached) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	key := fmt.Sprintf("%s%d", coursePrefix, id)
	if raw, err := s.client.Get(ctx, key).Result(); err == nil {
		var course models.Course
		if err := json.Unmarshal([]byte(raw), &course); err == nil {
			return &course, nil
		}
	} else if err != goredis.Nil {
		s.logger.WarnContext(ctx, "course cache read failed", "key", key, "error", err)
	}

	course, err := s.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.set(ctx, key, course)
	return course, nil
}

func (s *Cached) List(ctx context.Context) ([]*models.Course, error) {
	if raw, err := s.client.Get(ctx, catalogKey).Result(); err == nil {
		var courses []*models.Course
		if err := json.Unmarshal([]byte(raw), &courses); err == nil {
			return courses, nil
		}
	} else if err != goredis.Nil {
		s.logger.WarnContext(ctx, "course cache read failed", "key", catalogKey, "error", err)
	}

	courses, err := s.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	s.set(ctx, catalogKey, courses)
	return courses, nil
}

func (s *Cached) Update(ctx context.Context, course *models.Course) (*models.Course, error) {
	updated, err := s.inner.Update(ctx, course)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, course.ID)
	return updated, nil
}

func (s *Cached) Delete(ctx context.Context, id int64) error {
	if err := s.inner.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *Cached) set(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "course cache write failed", "key", key, "error", err)
	}
}

func (s *Cached) invalidate(ctx context.Context, id int64) {
	key := fmt.Sprintf("%s%d", coursePrefix, id)
	if err := s.client.Del(ctx, catalogKey, key).Err(); err != nil {
		s.logger.WarnContext(ctx, "course cache invalidation failed", "key", key, "error", err)
	}
}
