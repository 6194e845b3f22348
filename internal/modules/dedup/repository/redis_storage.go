package repository

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/samber/oops"
)

// RedisStorage implements Repository on top of a redis server.
type RedisStorage struct {
	inner *redis.Client
}

// NewRedisStorage connects to databaseURL (redis://[:password@]host:port/db)
// and verifies the connection with a PING.
func NewRedisStorage(ctx context.Context, databaseURL string) (*RedisStorage, error) {
	opts, err := redis.ParseURL(databaseURL)
	if err != nil {
		return nil, oops.In("dedup").With("context", "failed to parse database_url").Wrap(err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, oops.In("dedup").With("addr", opts.Addr, "context", "failed to ping redis").Wrap(err)
	}

	return &RedisStorage{inner: client}, nil
}

func (s *RedisStorage) Get(ctx context.Context, postID int64) (int64, bool, error) {
	v, err := s.inner.Get(ctx, Key(postID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, oops.In("dedup").With("key", Key(postID)).Wrap(err)
	}
	return v, true, nil
}

// Set writes the record with SETEX semantics.
func (s *RedisStorage) Set(ctx context.Context, postID int64, updatedAt int64, ttl time.Duration) error {
	if err := s.inner.Set(ctx, Key(postID), updatedAt, ttl).Err(); err != nil {
		return oops.In("dedup").With("key", Key(postID), "ttl", ttl).Wrap(err)
	}
	return nil
}

func (s *RedisStorage) Close() error {
	return s.inner.Close()
}
