package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisKey is the Redis key holding the snapshot.
const RedisKey = "dialogtree:" + Key

// RedisStore keeps the snapshot under a single Redis key.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to the server at url (redis://host:port/db) and
// pings it before returning.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	if url == "" {
		url = "redis://localhost:6379/0"
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStoreFromClient(client), nil
}

// NewRedisStoreFromClient wraps an existing client. Close closes it.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, key: RedisKey}
}

// Load fetches the snapshot key.
func (s *RedisStore) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

// Save overwrites the snapshot key without expiry.
func (s *RedisStore) Save(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Clear deletes the snapshot key.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close closes the client.
func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
