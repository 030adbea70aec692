package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/go-task-manager/internal/domain/entity"
	"github.com/oksasatya/go-task-manager/internal/domain/repository"
)

const taskColumns = `id::text, description, completed, owner_id::text, created_at, updated_at`

// sortColumns is the only source of ORDER BY identifiers.
var sortColumns = map[entity.SortField]string{
	entity.SortByCreatedAt:   "created_at",
	entity.SortByUpdatedAt:   "updated_at",
	entity.SortByDescription: "description",
	entity.SortByCompleted:   "completed",
}

type TaskRepository struct {
	db DBTX
}

func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

func scanTask(row pgx.Row) (*entity.Task, error) {
	t := &entity.Task{}
	if err := row.Scan(&t.ID, &t.Description, &t.Completed, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

func (r *TaskRepository) Create(ctx context.Context, t *entity.Task) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO tasks (description, completed, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id::text, created_at, updated_at
	`, t.Description, t.Completed, t.OwnerID)

	if err := row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return mapError(err)
	}
	return nil
}

func (r *TaskRepository) FindByOwner(ctx context.Context, id, ownerID string) (*entity.Task, error) {
	return scanTask(r.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND owner_id = $2`, id, ownerID))
}

// listQuery builds the owner-scoped listing statement and its arguments.
func listQuery(ownerID string, f entity.TaskFilter) (string, []any) {
	var sb strings.Builder
	args := []any{ownerID}
	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1`)

	if f.Completed != nil {
		args = append(args, *f.Completed)
		fmt.Fprintf(&sb, ` AND completed = $%d`, len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		fmt.Fprintf(&sb, ` AND description ILIKE $%d`, len(args))
	}

	col, ok := sortColumns[f.Sort]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}
	fmt.Fprintf(&sb, ` ORDER BY %s %s, created_at ASC, id ASC`, col, dir)

	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&sb, ` LIMIT $%d`, len(args))
	}
	args = append(args, f.Skip)
	fmt.Fprintf(&sb, ` OFFSET $%d`, len(args))
	return sb.String(), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID string, f entity.TaskFilter) ([]entity.Task, error) {
	q, args := listQuery(ownerID, f)
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := make([]entity.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (r *TaskRepository) UpdateByOwner(ctx context.Context, id, ownerID string, p entity.TaskPatch) (*entity.Task, error) {
	return scanTask(r.db.QueryRow(ctx, `
		UPDATE tasks SET
			description = COALESCE($3, description),
			completed = COALESCE($4, completed),
			updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING `+taskColumns,
		id, ownerID, p.Description, p.Completed))
}

func (r *TaskRepository) DeleteByOwner(ctx context.Context, id, ownerID string) (*entity.Task, error) {
	return scanTask(r.db.QueryRow(ctx,
		`DELETE FROM tasks WHERE id = $1 AND owner_id = $2 RETURNING `+taskColumns, id, ownerID))
}

var _ repository.TaskRepository = (*TaskRepository)(nil)
