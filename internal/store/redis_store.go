// Package store provides the durable backends: the redis-backed canonical
// project store and the optional postgres contribution archive.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"brigade/api/internal/project"
	"github.com/redis/go-redis/v9"
)

// RedisStore holds one canonical project document per deployment profile
// under a single fixed key. Every save is a full-document overwrite.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to redis and binds the store to a profile key.
func NewRedisStore(redisURL, profile string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, profile), nil
}

// NewRedisStoreWithClient creates a store from an existing redis client.
func NewRedisStoreWithClient(client *redis.Client, profile string) *RedisStore {
	if profile == "" {
		profile = "default"
	}
	return &RedisStore{
		client: client,
		key:    "brigade:project:" + profile,
	}
}

// Load reads and sanitizes the stored document. Any read or parse failure
// degrades to the all-defaults document rather than surfacing an error: a
// corrupt profile becomes an empty project, never a blocked one.
func (s *RedisStore) Load(ctx context.Context) project.Project {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("store: load %s: %v", s.key, err)
		}
		return project.Default()
	}
	return project.Sanitize(data)
}

// Save overwrites the stored document with the given one.
func (s *RedisStore) Save(ctx context.Context, doc project.Project) error {
	payload, err := project.Encode(doc)
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	if err := s.client.Set(ctx, s.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	return nil
}

// Reset deletes the stored document. Irreversible.
func (s *RedisStore) Reset(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("reset project: %w", err)
	}
	return nil
}

// Close closes the redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks whether redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
