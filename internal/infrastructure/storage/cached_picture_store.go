package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-task-manager/internal/domain/repository"
	"github.com/oksasatya/go-task-manager/pkg/helpers"
)

// CachedPictureStore serves reads from Redis and falls back to Next. Writes go
// to Next first and then drop the cached copy. Redis failures are logged and
// never fail the request.
type CachedPictureStore struct {
	Next   repository.PictureStore
	Redis  *redis.Client
	TTL    time.Duration
	Logger *logrus.Logger
}

func NewCachedPictureStore(next repository.PictureStore, rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *CachedPictureStore {
	return &CachedPictureStore{Next: next, Redis: rdb, TTL: ttl, Logger: logger}
}

func pictureKey(userID string) string {
	return "user:picture:" + userID
}

func (s *CachedPictureStore) Get(ctx context.Context, userID string) ([]byte, error) {
	key := pictureKey(userID)
	cached, found, err := helpers.RedisGetBytes(ctx, s.Redis, key)
	if err != nil {
		s.warn(err, key, "redis get failed")
	}
	if found {
		return cached, nil
	}

	data, err := s.Next.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := helpers.RedisSetBytes(ctx, s.Redis, key, data, s.TTL); err != nil {
		s.warn(err, key, "redis set failed")
	}
	return data, nil
}

func (s *CachedPictureStore) Put(ctx context.Context, userID string, data []byte) error {
	if err := s.Next.Put(ctx, userID, data); err != nil {
		return err
	}
	s.evict(ctx, userID)
	return nil
}

// Delete evicts even when Next fails, so a picture removed by an account
// cascade is not served from cache afterwards.
func (s *CachedPictureStore) Delete(ctx context.Context, userID string) error {
	err := s.Next.Delete(ctx, userID)
	s.evict(ctx, userID)
	return err
}

func (s *CachedPictureStore) evict(ctx context.Context, userID string) {
	key := pictureKey(userID)
	if err := helpers.RedisDel(ctx, s.Redis, key); err != nil {
		s.warn(err, key, "redis del failed")
	}
}

func (s *CachedPictureStore) warn(err error, key, msg string) {
	if s.Logger != nil {
		s.Logger.WithError(err).WithField("key", key).Warn(msg)
	}
}

var _ repository.PictureStore = (*CachedPictureStore)(nil)
