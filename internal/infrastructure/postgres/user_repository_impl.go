package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/go-task-manager/internal/domain/entity"
	"github.com/oksasatya/go-task-manager/internal/domain/repository"
)

const userColumns = `id::text, name, email, password_hash, age, tokens, created_at, updated_at`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Age, &u.Tokens,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	if u.Tokens == nil {
		u.Tokens = []string{}
	}
	return u, nil
}

// Create inserts u with its initial token list. An empty ID is generated here.
func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Tokens == nil {
		u.Tokens = []string{}
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (id, name, email, password_hash, age, tokens)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, u.ID, u.Name, u.Email, u.Password, u.Age, u.Tokens)

	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapError(err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// Update writes only the non-nil fields of patch.
func (r *UserRepository) Update(ctx context.Context, id string, p entity.UserPatch) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		UPDATE users SET
			name = COALESCE($2, name),
			email = COALESCE($3, email),
			password_hash = COALESCE($4, password_hash),
			age = COALESCE($5, age),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		id, p.Name, p.Email, p.Password, p.Age))
}

// AppendToken appends in a single statement so concurrent logins are never lost.
func (r *UserRepository) AppendToken(ctx context.Context, id, token string) error {
	return requireRow(r.db.Exec(ctx,
		`UPDATE users SET tokens = array_append(tokens, $2) WHERE id = $1`, id, token))
}

func (r *UserRepository) RemoveToken(ctx context.Context, id, token string) error {
	return requireRow(r.db.Exec(ctx,
		`UPDATE users SET tokens = array_remove(tokens, $2) WHERE id = $1`, id, token))
}

func (r *UserRepository) ClearTokens(ctx context.Context, id string) error {
	return requireRow(r.db.Exec(ctx,
		`UPDATE users SET tokens = '{}' WHERE id = $1`, id))
}

// DeleteCascade removes the user's tasks and then the user in one transaction.
func (r *UserRepository) DeleteCascade(ctx context.Context, id string) (*entity.User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE owner_id = $1`, id); err != nil {
		return nil, fmt.Errorf("delete tasks: %w", mapError(err))
	}
	u, err := scanUser(tx.QueryRow(ctx, `DELETE FROM users WHERE id = $1 RETURNING `+userColumns, id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	committed = true
	return u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
