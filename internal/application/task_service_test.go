package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-task-manager/internal/domain/entity"
	"github.com/oksasatya/go-task-manager/pkg/validation"
)

func registerPair(t *testing.T, f *userFixture) (owner, other string) {
	t.Helper()
	ctx := context.Background()
	a, err := f.svc.Register(ctx, NewUserInput{Name: "A", Email: "a@x.com", Password: "tester11"})
	require.NoError(t, err)
	b, err := f.svc.Register(ctx, NewUserInput{Name: "B", Email: "b@x.com", Password: "tester11"})
	require.NoError(t, err)
	return a.User.ID, b.User.ID
}

func TestTaskService_CreateAndGet(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	owner, other := registerPair(t, f)

	task, err := f.tasks.Create(ctx, owner, NewTaskInput{Description: "  buy milk "})
	require.NoError(t, err)
	assert.Equal(t, "buy milk", task.Description)
	assert.False(t, task.Completed)
	assert.Equal(t, owner, task.OwnerID)
	assert.Contains(t, f.index.docs, task.ID)

	got, err := f.tasks.Get(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	_, err = f.tasks.Get(ctx, other, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.tasks.Get(ctx, owner, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.tasks.Get(ctx, other, "not-an-id")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestTaskService_CreateValidation(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	owner, other := registerPair(t, f)

	_, err := f.tasks.Create(ctx, owner, NewTaskInput{Description: "   "})
	var ve *validation.Error
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{"description"}, ve.Fields())

	_, err = f.tasks.Create(ctx, owner, NewTaskInput{Description: "same"})
	require.NoError(t, err)
	_, err = f.tasks.Create(ctx, other, NewTaskInput{Description: "same"})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{"description"}, ve.Fields())
}

func TestTaskService_Update(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	owner, other := registerPair(t, f)

	task, err := f.tasks.Create(ctx, owner, NewTaskInput{Description: "write report"})
	require.NoError(t, err)

	t.Run("owner updates allowed fields", func(t *testing.T) {
		got, err := f.tasks.Update(ctx, owner, task.ID, rawFields(t, `{"completed":true,"description":"write the report"}`))
		require.NoError(t, err)
		assert.True(t, got.Completed)
		assert.Equal(t, "write the report", got.Description)
	})

	t.Run("unknown field leaves task unchanged", func(t *testing.T) {
		_, err := f.tasks.Update(ctx, owner, task.ID, rawFields(t, `{"foo":"bar"}`))
		var ife *InvalidFieldsError
		require.True(t, errors.As(err, &ife))
		assert.Equal(t, []string{"foo"}, ife.Invalid)

		got, err := f.tasks.Get(ctx, owner, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "write the report", got.Description)
	})

	t.Run("owner cannot be reassigned", func(t *testing.T) {
		_, err := f.tasks.Update(ctx, owner, task.ID, rawFields(t, fmt.Sprintf(`{"owner":%q}`, other)))
		var ife *InvalidFieldsError
		require.True(t, errors.As(err, &ife))
	})

	t.Run("other owner sees not found", func(t *testing.T) {
		_, err := f.tasks.Update(ctx, other, task.ID, rawFields(t, `{"completed":false}`))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("malformed id is checked first", func(t *testing.T) {
		_, err := f.tasks.Update(ctx, other, "123", rawFields(t, `{"foo":"bar"}`))
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("null completed is rejected", func(t *testing.T) {
		_, err := f.tasks.Update(ctx, owner, task.ID, rawFields(t, `{"completed":null}`))
		var ve *validation.Error
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, []string{"completed"}, ve.Fields())

		got, err := f.tasks.Get(ctx, owner, task.ID)
		require.NoError(t, err)
		assert.True(t, got.Completed)
	})

	t.Run("wrong types", func(t *testing.T) {
		_, err := f.tasks.Update(ctx, owner, task.ID, rawFields(t, `{"completed":"yes","description":""}`))
		var ve *validation.Error
		require.True(t, errors.As(err, &ve))
		assert.ElementsMatch(t, []string{"completed", "description"}, ve.Fields())
	})
}

func TestTaskService_Delete(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	owner, other := registerPair(t, f)

	task, err := f.tasks.Create(ctx, owner, NewTaskInput{Description: "delete me"})
	require.NoError(t, err)

	_, err = f.tasks.Delete(ctx, other, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	deleted, err := f.tasks.Delete(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, deleted.ID)
	assert.Contains(t, f.index.removed, task.ID)

	_, err = f.tasks.Delete(ctx, owner, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.tasks.Delete(ctx, owner, "bad")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestTaskService_List(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	owner, other := registerPair(t, f)

	for i := 0; i < 15; i++ {
		_, err := f.tasks.Create(ctx, owner, NewTaskInput{Description: fmt.Sprintf("task %02d", i), Completed: i%3 == 0})
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}
	_, err := f.tasks.Create(ctx, other, NewTaskInput{Description: "foreign"})
	require.NoError(t, err)

	all, err := f.tasks.List(ctx, owner, entity.TaskFilter{Limit: 1000})
	require.NoError(t, err)
	assert.Len(t, all, 15)
	for _, task := range all {
		assert.Equal(t, owner, task.OwnerID)
	}

	def, err := f.tasks.List(ctx, owner, entity.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, def, DefaultTaskLimit)
	assert.Equal(t, "task 00", def[0].Description)

	done := true
	completed, err := f.tasks.List(ctx, owner, entity.TaskFilter{Completed: &done})
	require.NoError(t, err)
	assert.Len(t, completed, 5)

	page, err := f.tasks.List(ctx, owner, entity.TaskFilter{Limit: 2, Skip: 2, Sort: entity.SortByDescription, Desc: true})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "task 12", page[0].Description)
	assert.Equal(t, "task 11", page[1].Description)
}

func TestTaskService_Search(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	owner, other := registerPair(t, f)

	_, err := f.tasks.Create(ctx, owner, NewTaskInput{Description: "Buy Milk"})
	require.NoError(t, err)
	_, err = f.tasks.Create(ctx, owner, NewTaskInput{Description: "walk dog"})
	require.NoError(t, err)
	_, err = f.tasks.Create(ctx, other, NewTaskInput{Description: "milk the cow"})
	require.NoError(t, err)

	got, err := f.tasks.Search(ctx, owner, "milk", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Buy Milk", got[0].Description)

	f.index.fail = errors.New("index down")
	got, err = f.tasks.Search(ctx, owner, "milk", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)

	f.tasks.Index = nil
	got, err = f.tasks.Search(ctx, owner, "DOG", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = f.tasks.Search(ctx, owner, "  ", 0)
	var ve *validation.Error
	assert.True(t, errors.As(err, &ve))
}

func TestTaskService_SearchCapsLimit(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	owner, _ := registerPair(t, f)

	for i := 0; i < 12; i++ {
		_, err := f.tasks.Create(ctx, owner, NewTaskInput{Description: fmt.Sprintf("chore %02d", i)})
		require.NoError(t, err)
	}

	got, err := f.tasks.Search(ctx, owner, "chore", 500)
	require.NoError(t, err)
	assert.Len(t, got, 12)
	assert.Equal(t, MaxTaskLimit, f.index.lastLimit)

	_, err = f.tasks.Search(ctx, owner, "chore", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTaskLimit, f.index.lastLimit)

	f.tasks.Index = nil
	got, err = f.tasks.Search(ctx, owner, "chore", 500)
	require.NoError(t, err)
	assert.Len(t, got, 12)
}
