// Copyright 2025 The fawa Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "auth_"

// RedisSessionStore implements SessionStore on Redis or Dragonfly.
// Expiry is left to the server's key TTL.
type RedisSessionStore struct {
	client redis.Cmdable
}

// RedisOptions selects the Redis endpoint.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisSessionStore connects to Redis and checks the connection.
func NewRedisSessionStore(ctx context.Context, opts RedisOptions) (*RedisSessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return &RedisSessionStore{client: client}, nil
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

// Get implements the SessionStore interface.
func (s *RedisSessionStore) Get(ctx context.Context, token string) (string, error) {
	val, err := s.client.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Set implements the SessionStore interface.
func (s *RedisSessionStore) Set(ctx context.Context, token, userID string, ttl time.Duration) error {
	if token == "" || userID == "" {
		return errors.New("session token and user id cannot be empty")
	}
	return s.client.Set(ctx, sessionKey(token), userID, ttl).Err()
}

// Del implements the SessionStore interface.
func (s *RedisSessionStore) Del(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}

// Ping implements the SessionStore interface.
func (s *RedisSessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (s *RedisSessionStore) Close() error {
	if c, ok := s.client.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
