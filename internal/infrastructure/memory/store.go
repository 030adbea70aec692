// Package memory is an in-process implementation of the repositories. A single
// mutex makes every operation atomic, which gives the token list the same
// append/remove guarantees as the Postgres array updates.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-task-manager/internal/domain/entity"
	"github.com/oksasatya/go-task-manager/internal/domain/repository"
)

type Store struct {
	mu       sync.Mutex
	users    map[string]*entity.User
	tasks    map[string]*entity.Task
	pictures map[string][]byte

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:    make(map[string]*entity.User),
		tasks:    make(map[string]*entity.Task),
		pictures: make(map[string][]byte),
		now:      time.Now,
	}
}

func (s *Store) Users() *UserRepository       { return &UserRepository{s: s} }
func (s *Store) Tasks() *TaskRepository       { return &TaskRepository{s: s} }
func (s *Store) Pictures() *PictureRepository { return &PictureRepository{s: s} }

func copyUser(u *entity.User) *entity.User {
	c := *u
	c.Tokens = slices.Clone(u.Tokens)
	if c.Tokens == nil {
		c.Tokens = []string{}
	}
	return &c
}

func copyTask(t *entity.Task) *entity.Task {
	c := *t
	return &c
}

// UserRepository implements repository.UserRepository.
type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.emailTaken(u.Email, "") {
		return &repository.DuplicateError{Field: "email"}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if _, ok := r.s.users[u.ID]; ok {
		return &repository.DuplicateError{Field: "id"}
	}
	now := r.s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.users[u.ID] = copyUser(u)
	return nil
}

func (r *UserRepository) emailTaken(email, exceptID string) bool {
	for id, u := range r.s.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyUser(u), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) Update(_ context.Context, id string, p entity.UserPatch) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.Email != nil && r.emailTaken(*p.Email, id) {
		return nil, &repository.DuplicateError{Field: "email"}
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.Age != nil {
		u.Age = *p.Age
	}
	u.UpdatedAt = r.s.now()
	return copyUser(u), nil
}

func (r *UserRepository) AppendToken(_ context.Context, id, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Tokens = append(u.Tokens, token)
	return nil
}

func (r *UserRepository) RemoveToken(_ context.Context, id, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Tokens = slices.DeleteFunc(u.Tokens, func(t string) bool { return t == token })
	return nil
}

func (r *UserRepository) ClearTokens(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Tokens = []string{}
	return nil
}

func (r *UserRepository) DeleteCascade(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for tid, t := range r.s.tasks {
		if t.OwnerID == id {
			delete(r.s.tasks, tid)
		}
	}
	delete(r.s.pictures, id)
	delete(r.s.users, id)
	return copyUser(u), nil
}

// TaskRepository implements repository.TaskRepository.
type TaskRepository struct{ s *Store }

func (r *TaskRepository) descriptionTaken(desc, exceptID string) bool {
	for id, t := range r.s.tasks {
		if id != exceptID && t.Description == desc {
			return true
		}
	}
	return false
}

func (r *TaskRepository) Create(_ context.Context, t *entity.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[t.OwnerID]; !ok {
		return repository.ErrNotFound
	}
	if r.descriptionTaken(t.Description, "") {
		return &repository.DuplicateError{Field: "description"}
	}
	now := r.s.now()
	t.ID = uuid.NewString()
	t.CreatedAt, t.UpdatedAt = now, now
	r.s.tasks[t.ID] = copyTask(t)
	return nil
}

func (r *TaskRepository) owned(id, ownerID string) (*entity.Task, bool) {
	t, ok := r.s.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, false
	}
	return t, true
}

func (r *TaskRepository) FindByOwner(_ context.Context, id, ownerID string) (*entity.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.owned(id, ownerID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyTask(t), nil
}

func (r *TaskRepository) ListByOwner(_ context.Context, ownerID string, f entity.TaskFilter) ([]entity.Task, error) {
	r.s.mu.Lock()
	out := make([]entity.Task, 0)
	search := strings.ToLower(f.Search)
	for _, t := range r.s.tasks {
		if t.OwnerID != ownerID {
			continue
		}
		if f.Completed != nil && t.Completed != *f.Completed {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		out = append(out, *t)
	}
	r.s.mu.Unlock()

	sortTasks(out, f.Sort, f.Desc)

	if f.Skip > 0 {
		if f.Skip >= len(out) {
			return []entity.Task{}, nil
		}
		out = out[f.Skip:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

// sortTasks orders by field, falling back to creation order then id so that
// pagination is stable.
func sortTasks(ts []entity.Task, field entity.SortField, desc bool) {
	less := func(a, b entity.Task) int {
		switch field {
		case entity.SortByUpdatedAt:
			return a.UpdatedAt.Compare(b.UpdatedAt)
		case entity.SortByDescription:
			return strings.Compare(a.Description, b.Description)
		case entity.SortByCompleted:
			switch {
			case a.Completed == b.Completed:
				return 0
			case !a.Completed:
				return -1
			default:
				return 1
			}
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	sort.SliceStable(ts, func(i, j int) bool {
		c := less(ts[i], ts[j])
		if desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		if k := ts[i].CreatedAt.Compare(ts[j].CreatedAt); k != 0 {
			return k < 0
		}
		return ts[i].ID < ts[j].ID
	})
}

func (r *TaskRepository) UpdateByOwner(_ context.Context, id, ownerID string, p entity.TaskPatch) (*entity.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.owned(id, ownerID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.Description != nil && r.descriptionTaken(*p.Description, id) {
		return nil, &repository.DuplicateError{Field: "description"}
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	t.UpdatedAt = r.s.now()
	return copyTask(t), nil
}

func (r *TaskRepository) DeleteByOwner(_ context.Context, id, ownerID string) (*entity.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.owned(id, ownerID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(r.s.tasks, id)
	return copyTask(t), nil
}

// PictureRepository implements repository.PictureStore.
type PictureRepository struct{ s *Store }

func (r *PictureRepository) Put(_ context.Context, userID string, data []byte) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return repository.ErrNotFound
	}
	r.s.pictures[userID] = slices.Clone(data)
	return nil
}

func (r *PictureRepository) Get(_ context.Context, userID string) ([]byte, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	data, ok := r.s.pictures[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return slices.Clone(data), nil
}

func (r *PictureRepository) Delete(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.pictures, userID)
	return nil
}

var (
	_ repository.UserRepository = (*UserRepository)(nil)
	_ repository.TaskRepository = (*TaskRepository)(nil)
	_ repository.PictureStore   = (*PictureRepository)(nil)
)
