// Package storage holds picture stores backed by Google Cloud Storage and a
// Redis read-through cache that can wrap any repository.PictureStore.
package storage

import (
	"bytes"
	"context"
	"errors"
	"path"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/go-task-manager/internal/domain/repository"
	"github.com/oksasatya/go-task-manager/pkg/helpers"
)

// GCSPictureStore keeps one PNG per user at avatars/<user id>.png.
type GCSPictureStore struct {
	Client *storage.Client
	Bucket string
}

func NewGCSPictureStore(client *storage.Client, bucket string) *GCSPictureStore {
	return &GCSPictureStore{Client: client, Bucket: bucket}
}

func objectPath(userID string) string {
	return path.Join("avatars", userID+".png")
}

func (s *GCSPictureStore) Put(ctx context.Context, userID string, data []byte) error {
	_, err := helpers.UploadObject(ctx, s.Client, s.Bucket, objectPath(userID), "image/png", bytes.NewReader(data))
	return err
}

func (s *GCSPictureStore) Get(ctx context.Context, userID string) ([]byte, error) {
	data, err := helpers.ReadObject(ctx, s.Client, s.Bucket, objectPath(userID))
	if errors.Is(err, helpers.ErrObjectNotFound) {
		return nil, repository.ErrNotFound
	}
	return data, err
}

func (s *GCSPictureStore) Delete(ctx context.Context, userID string) error {
	err := helpers.DeleteObject(ctx, s.Client, s.Bucket, objectPath(userID))
	if errors.Is(err, helpers.ErrObjectNotFound) {
		return nil
	}
	return err
}

var _ repository.PictureStore = (*GCSPictureStore)(nil)
