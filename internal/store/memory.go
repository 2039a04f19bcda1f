package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/NaufalAlfiR/task-management-system/internal/apperrors"
	"github.com/NaufalAlfiR/task-management-system/internal/models"
)

// MemoryUserStore keeps users in a map guarded by a RWMutex. Fiber dispatches
// handlers on multiple goroutines, so unlike a single-threaded event loop the
// maps need explicit locking.
type MemoryUserStore struct {
	mu     sync.RWMutex
	users  map[int]models.User
	nextID int
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[int]models.User), nextID: 1}
}

func (s *MemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return apperrors.ErrDuplicateEmail
		}
		if existing.Username == user.Username {
			return apperrors.ErrDuplicateUsername
		}
	}

	now := time.Now()
	user.ID = s.nextID
	s.nextID++
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryUserStore) GetByID(_ context.Context, id int) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, apperrors.ErrNotFound
	}
	return user, nil
}

func (s *MemoryUserStore) GetByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, apperrors.ErrNotFound
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return models.User{}, apperrors.ErrNotFound
}

func (s *MemoryUserStore) RecordLogin(_ context.Context, id int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	user.LastLoginAt = &at
	user.UpdatedAt = at
	s.users[id] = user
	return nil
}

// SetActive toggles an account's active flag. Not part of the UserStore
// interface; there is no public endpoint for it.
func (s *MemoryUserStore) SetActive(_ context.Context, id int, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	user.Active = active
	user.UpdatedAt = time.Now()
	s.users[id] = user
	return nil
}

func (s *MemoryUserStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

// MemoryTaskStore keeps tasks in a map guarded by a RWMutex. Ids are
// allocated from a monotonic counter and never reused.
type MemoryTaskStore struct {
	mu     sync.RWMutex
	tasks  map[int]models.Task
	nextID int
}

func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{tasks: make(map[int]models.Task), nextID: 1}
}

func (s *MemoryTaskStore) Create(_ context.Context, task *models.Task) error {
	task.Title = strings.TrimSpace(task.Title)
	if task.Title == "" {
		return apperrors.ErrInvalidTask
	}
	if !task.Priority.Valid() || !task.Category.Valid() {
		return apperrors.ErrInvalidTask
	}
	task.Tags = models.NormalizeTags(task.Tags)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	task.ID = s.nextID
	s.nextID++
	task.CreatedAt = now
	task.UpdatedAt = now
	s.tasks[task.ID] = copyTask(*task)
	return nil
}

func (s *MemoryTaskStore) Get(_ context.Context, id, ownerID int) (models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok || task.UserID != ownerID {
		return models.Task{}, apperrors.ErrNotFound
	}
	return copyTask(task), nil
}

func (s *MemoryTaskStore) Update(_ context.Context, id, ownerID int, patch TaskPatch) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok || task.UserID != ownerID {
		return models.Task{}, apperrors.ErrNotFound
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return models.Task{}, apperrors.ErrInvalidTask
		}
		task.Title = title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return models.Task{}, apperrors.ErrInvalidTask
		}
		task.Priority = *patch.Priority
	}
	if patch.Category != nil {
		if !patch.Category.Valid() {
			return models.Task{}, apperrors.ErrInvalidTask
		}
		task.Category = *patch.Category
	}
	if patch.ClearDueDate {
		task.DueDate = nil
	} else if patch.DueDate != nil {
		due := *patch.DueDate
		task.DueDate = &due
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}
	if patch.Tags != nil {
		task.Tags = models.NormalizeTags(*patch.Tags)
	}
	task.UpdatedAt = time.Now()

	s.tasks[id] = copyTask(task)
	return copyTask(task), nil
}

func (s *MemoryTaskStore) Delete(_ context.Context, id, ownerID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok || task.UserID != ownerID {
		return apperrors.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *MemoryTaskStore) ListByOwner(_ context.Context, ownerID int) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := []models.Task{}
	for _, task := range s.tasks {
		if task.UserID == ownerID {
			tasks = append(tasks, copyTask(task))
		}
	}
	// Map iteration order is random; hand callers a deterministic base order.
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (s *MemoryTaskStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks), nil
}

// copyTask deep-copies the slice and pointer fields so callers never share
// state with the map.
func copyTask(task models.Task) models.Task {
	if task.Tags != nil {
		tags := make([]string, len(task.Tags))
		copy(tags, task.Tags)
		task.Tags = tags
	}
	if task.DueDate != nil {
		due := *task.DueDate
		task.DueDate = &due
	}
	return task
}
