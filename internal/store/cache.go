package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/NaufalAlfiR/task-management-system/internal/models"
	"github.com/NaufalAlfiR/task-management-system/pkg/logger"
)

const cacheTTL = time.Hour

// CachedTaskStore decorates a TaskStore with a per-task Redis cache. Cache
// misses and Redis failures fall through to the wrapped store, so the cache
// is never load-bearing.
type CachedTaskStore struct {
	TaskStore
	rdb *redis.Client
}

func NewCachedTaskStore(inner TaskStore, rdb *redis.Client) *CachedTaskStore {
	return &CachedTaskStore{TaskStore: inner, rdb: rdb}
}

func taskCacheKey(id int) string { return fmt.Sprintf("task:%d", id) }

func (s *CachedTaskStore) Get(ctx context.Context, id, ownerID int) (models.Task, error) {
	if cached, err := s.rdb.Get(ctx, taskCacheKey(id)).Result(); err == nil {
		var task models.Task
		if err := json.Unmarshal([]byte(cached), &task); err == nil {
			// The cache is keyed by id only; the ownership check still applies.
			if task.UserID == ownerID {
				return task, nil
			}
		}
	}

	task, err := s.TaskStore.Get(ctx, id, ownerID)
	if err != nil {
		return models.Task{}, err
	}
	s.set(ctx, task)
	return task, nil
}

func (s *CachedTaskStore) Create(ctx context.Context, task *models.Task) error {
	if err := s.TaskStore.Create(ctx, task); err != nil {
		return err
	}
	s.set(ctx, *task)
	return nil
}

func (s *CachedTaskStore) Update(ctx context.Context, id, ownerID int, patch TaskPatch) (models.Task, error) {
	task, err := s.TaskStore.Update(ctx, id, ownerID, patch)
	if err != nil {
		return models.Task{}, err
	}
	s.rdb.Del(ctx, taskCacheKey(id))
	s.set(ctx, task)
	return task, nil
}

func (s *CachedTaskStore) Delete(ctx context.Context, id, ownerID int) error {
	if err := s.TaskStore.Delete(ctx, id, ownerID); err != nil {
		return err
	}
	s.rdb.Del(ctx, taskCacheKey(id))
	return nil
}

func (s *CachedTaskStore) set(ctx context.Context, task models.Task) {
	data, err := json.Marshal(task)
	if err != nil {
		return
	}
	if err := s.rdb.SetEX(ctx, taskCacheKey(task.ID), data, cacheTTL).Err(); err != nil {
		logger.ErrorLogger.Error("Error caching task", zap.Error(err))
	}
}
