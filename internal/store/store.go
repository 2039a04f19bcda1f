package store

import (
	"context"
	"time"

	"github.com/NaufalAlfiR/task-management-system/internal/models"
)

// TaskPatch is the allow-listed set of mutable task fields. Task id and
// owner have no slot here, so a request body carrying them cannot change
// either one.
type TaskPatch struct {
	Title        *string
	Description  *string
	Priority     *models.Priority
	Category     *models.Category
	DueDate      *time.Time
	ClearDueDate bool
	Completed    *bool
	Tags         *[]string
}

// UserStore persists user records. Implementations assign monotonically
// increasing ids and report duplicate email/username as the apperrors
// sentinels.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	RecordLogin(ctx context.Context, id int, at time.Time) error
	Count(ctx context.Context) (int, error)
}

// TaskStore persists task records. Every read and mutation is scoped to the
// owning user: a task belonging to someone else behaves as if it does not
// exist.
type TaskStore interface {
	Create(ctx context.Context, task *models.Task) error
	Get(ctx context.Context, id, ownerID int) (models.Task, error)
	Update(ctx context.Context, id, ownerID int, patch TaskPatch) (models.Task, error)
	Delete(ctx context.Context, id, ownerID int) error
	ListByOwner(ctx context.Context, ownerID int) ([]models.Task, error)
	Count(ctx context.Context) (int, error)
}
