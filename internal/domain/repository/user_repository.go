package repository

import (
	"context"

	"github.com/oksasatya/go-task-manager/internal/domain/entity"
)

// UserRepository defines the interface for user-related storage operations.
// Token list mutations must be atomic at the storage layer: concurrent appends
// for the same user may not be lost.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, id string, patch entity.UserPatch) (*entity.User, error)

	AppendToken(ctx context.Context, id, token string) error
	RemoveToken(ctx context.Context, id, token string) error
	ClearTokens(ctx context.Context, id string) error

	// DeleteCascade removes the user and every task it owns as one unit.
	// It returns the deleted user.
	DeleteCascade(ctx context.Context, id string) (*entity.User, error)
}
