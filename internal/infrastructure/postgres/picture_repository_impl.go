package postgres

import (
	"context"

	"github.com/oksasatya/go-task-manager/internal/domain/repository"
)

// PictureRepository keeps profile pictures in users.profile_pic.
type PictureRepository struct {
	db DBTX
}

func NewPictureRepository(db DBTX) *PictureRepository {
	return &PictureRepository{db: db}
}

func (r *PictureRepository) Put(ctx context.Context, userID string, data []byte) error {
	return requireRow(r.db.Exec(ctx,
		`UPDATE users SET profile_pic = $2, updated_at = NOW() WHERE id = $1`, userID, data))
}

func (r *PictureRepository) Get(ctx context.Context, userID string) ([]byte, error) {
	var data []byte
	if err := r.db.QueryRow(ctx, `SELECT profile_pic FROM users WHERE id = $1`, userID).Scan(&data); err != nil {
		return nil, mapError(err)
	}
	if len(data) == 0 {
		return nil, repository.ErrNotFound
	}
	return data, nil
}

func (r *PictureRepository) Delete(ctx context.Context, userID string) error {
	return requireRow(r.db.Exec(ctx,
		`UPDATE users SET profile_pic = NULL WHERE id = $1`, userID))
}

var _ repository.PictureStore = (*PictureRepository)(nil)
