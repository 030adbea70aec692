package repository

import "context"

// PictureStore keeps one profile picture per user.
type PictureStore interface {
	Put(ctx context.Context, userID string, data []byte) error
	// Get returns ErrNotFound when the user has no picture.
	Get(ctx context.Context, userID string) ([]byte, error)
	Delete(ctx context.Context, userID string) error
}
