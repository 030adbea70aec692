package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-task-manager/internal/domain/entity"
	repo "github.com/oksasatya/go-task-manager/internal/domain/repository"
	"github.com/oksasatya/go-task-manager/pkg/validation"
)

// TaskUpdatableFields is the allow-list for task updates.
var TaskUpdatableFields = []string{"description", "completed"}

const (
	DefaultTaskLimit = 10
	MaxTaskLimit     = 100
)

type NewTaskInput struct {
	Description string `json:"description" validate:"required"`
	Completed   bool   `json:"completed"`
}

// TaskIndex is an optional secondary index used for search.
type TaskIndex interface {
	Index(ctx context.Context, t *entity.Task) error
	Remove(ctx context.Context, id string) error
	RemoveOwner(ctx context.Context, ownerID string) error
	// Search returns ids of the owner's tasks matching query, best match first.
	Search(ctx context.Context, ownerID, query string, limit int) ([]string, error)
}

// TaskService scopes every operation to the authenticated owner. A task that
// belongs to someone else is reported exactly like a missing one.
type TaskService struct {
	Repo   repo.TaskRepository
	Index  TaskIndex
	Logger *logrus.Logger
}

func NewTaskService(r repo.TaskRepository, index TaskIndex, logger *logrus.Logger) *TaskService {
	return &TaskService{Repo: r, Index: index, Logger: logger}
}

func (s *TaskService) Create(ctx context.Context, ownerID string, in NewTaskInput) (*entity.Task, error) {
	in.Description = strings.TrimSpace(in.Description)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	t := &entity.Task{
		Description: in.Description,
		Completed:   in.Completed,
		OwnerID:     ownerID,
	}
	if err := s.Repo.Create(ctx, t); err != nil {
		return nil, translateStoreError(err)
	}
	s.index(ctx, t)
	return t, nil
}

func (s *TaskService) Get(ctx context.Context, ownerID, id string) (*entity.Task, error) {
	if err := CheckID(id); err != nil {
		return nil, err
	}
	t, err := s.Repo.FindByOwner(ctx, id, ownerID)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return t, nil
}

// List returns the owner's tasks. Limit is clamped to (0, MaxTaskLimit].
func (s *TaskService) List(ctx context.Context, ownerID string, f entity.TaskFilter) ([]entity.Task, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultTaskLimit
	}
	if f.Limit > MaxTaskLimit {
		f.Limit = MaxTaskLimit
	}
	if f.Skip < 0 {
		f.Skip = 0
	}
	tasks, err := s.Repo.ListByOwner(ctx, ownerID, f)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Search finds the owner's tasks whose description matches query. The search
// index is used when configured; ids it returns are re-read through the
// owner-scoped repository so stale or foreign hits are dropped.
func (s *TaskService) Search(ctx context.Context, ownerID, query string, limit int) ([]entity.Task, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, validation.NewError("q", "required", "is required")
	}
	if limit <= 0 {
		limit = DefaultTaskLimit
	}
	if limit > MaxTaskLimit {
		limit = MaxTaskLimit
	}
	if s.Index == nil {
		return s.List(ctx, ownerID, entity.TaskFilter{Search: query, Limit: limit})
	}

	ids, err := s.Index.Search(ctx, ownerID, query, limit)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", ownerID).Warn("task index search failed, falling back to store")
		}
		return s.List(ctx, ownerID, entity.TaskFilter{Search: query, Limit: limit})
	}
	out := make([]entity.Task, 0, len(ids))
	for _, id := range ids {
		t, err := s.Repo.FindByOwner(ctx, id, ownerID)
		if errors.Is(err, repo.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load task %s: %w", id, err)
		}
		out = append(out, *t)
	}
	return out, nil
}

// Update checks the id, then the allow-list, then applies the patch. Nothing
// is written when any check fails.
func (s *TaskService) Update(ctx context.Context, ownerID, id string, fields map[string]json.RawMessage) (*entity.Task, error) {
	if err := CheckID(id); err != nil {
		return nil, err
	}
	if err := CheckAllowedFields(sortedKeys(fields), TaskUpdatableFields...); err != nil {
		return nil, err
	}
	patch, err := decodeTaskPatch(fields)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return s.Get(ctx, ownerID, id)
	}
	t, err := s.Repo.UpdateByOwner(ctx, id, ownerID, patch)
	if err != nil {
		return nil, translateStoreError(err)
	}
	s.index(ctx, t)
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, id string) (*entity.Task, error) {
	if err := CheckID(id); err != nil {
		return nil, err
	}
	t, err := s.Repo.DeleteByOwner(ctx, id, ownerID)
	if err != nil {
		return nil, translateStoreError(err)
	}
	if s.Index != nil {
		if err := s.Index.Remove(ctx, t.ID); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("task_id", t.ID).Warn("remove task from search index failed")
		}
	}
	return t, nil
}

func (s *TaskService) index(ctx context.Context, t *entity.Task) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, t); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("task_id", t.ID).Warn("index task failed")
	}
}

func decodeTaskPatch(fields map[string]json.RawMessage) (entity.TaskPatch, error) {
	var (
		patch entity.TaskPatch
		verr  validation.Error
	)
	if raw, ok := fields["description"]; ok {
		var desc string
		if err := json.Unmarshal(raw, &desc); err != nil {
			verr.Violations = append(verr.Violations, validation.Violation{Field: "description", Tag: "string", Message: "must be a string"})
		} else if desc = strings.TrimSpace(desc); desc == "" {
			verr.Violations = append(verr.Violations, validation.Violation{Field: "description", Tag: "required", Message: "is required"})
		} else {
			patch.Description = &desc
		}
	}
	if raw, ok := fields["completed"]; ok {
		var done *bool
		if err := json.Unmarshal(raw, &done); err != nil || done == nil {
			verr.Violations = append(verr.Violations, validation.Violation{Field: "completed", Tag: "boolean", Message: "must be a boolean"})
		} else {
			patch.Completed = done
		}
	}
	if len(verr.Violations) > 0 {
		return entity.TaskPatch{}, &verr
	}
	return patch, nil
}
