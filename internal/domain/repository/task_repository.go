package repository

import (
	"context"

	"github.com/oksasatya/go-task-manager/internal/domain/entity"
)

// TaskRepository reads and writes tasks. Every lookup after creation is
// scoped by owner id; a task owned by someone else is reported as ErrNotFound.
type TaskRepository interface {
	Create(ctx context.Context, t *entity.Task) error
	FindByOwner(ctx context.Context, id, ownerID string) (*entity.Task, error)
	ListByOwner(ctx context.Context, ownerID string, f entity.TaskFilter) ([]entity.Task, error)
	UpdateByOwner(ctx context.Context, id, ownerID string, patch entity.TaskPatch) (*entity.Task, error)
	DeleteByOwner(ctx context.Context, id, ownerID string) (*entity.Task, error)
}
