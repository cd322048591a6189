// SPDX-License-Identifier: MIT

package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/chainforge/optionsim/internal/cherr"
	"github.com/chainforge/optionsim/internal/config"
)

// RedisStore replicates sessions through Redis so horizontal instances
// share them. Every save refreshes the TTL; a dormant session expires
// on its own.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// ConnectRedis opens and pings a Redis client from the configuration.
func ConnectRedis(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, cherr.Wrap(cherr.KindStore, err, "redis ping %s", cfg.Addr())
	}
	return client, nil
}

// NewRedisStore wraps a connected client.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisStore) key(id uuid.UUID) string { return r.prefix + id.String() }

// Get fetches and decodes the session snapshot.
func (r *RedisStore) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cherr.NotFound("session %s not found", id)
	}
	if err != nil {
		return nil, cherr.Wrap(cherr.KindStore, err, "redis get %s", id)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, cherr.Wrap(cherr.KindSerialization, err, "decode session %s", id)
	}
	return &s, nil
}

// Save encodes the full snapshot and refreshes the TTL.
func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return cherr.Wrap(cherr.KindSerialization, err, "encode session %s", s.ID)
	}
	if err := r.client.Set(ctx, r.key(s.ID), raw, r.ttl).Err(); err != nil {
		return cherr.Wrap(cherr.KindStore, err, "redis set %s", s.ID)
	}
	return nil
}

// Delete removes the key, reporting whether it existed.
func (r *RedisStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return false, cherr.Wrap(cherr.KindStore, err, "redis del %s", id)
	}
	return n > 0, nil
}

// Cleanup is a no-op; key expiry is TTL-driven.
func (r *RedisStore) Cleanup(context.Context) (int, error) { return 0, nil }

// ActiveIDs scans the live session keys so the cleanup sweep can evict
// orphaned walks and correct the session gauge after TTL expiry.
func (r *RedisStore) ActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		id, err := uuid.Parse(iter.Val()[len(r.prefix):])
		if err != nil {
			// Foreign key under our prefix; not a session.
			continue
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, cherr.Wrap(cherr.KindStore, err, "redis scan %s*", r.prefix)
	}
	return ids, nil
}
