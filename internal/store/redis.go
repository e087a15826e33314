package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amishk599/smartresume/internal/model"
	"github.com/amishk599/smartresume/internal/session"
)

var _ session.Store = (*RedisStore)(nil)

const redisKeyPrefix = "smartresume:session:"

// RedisStore keeps each session as a JSON string under a prefixed key.
// Idle sessions expire through the key TTL, refreshed on every Save.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore connects to redisURL and removes any sessions left by a
// previous run.
func NewRedisStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	s := &RedisStore{rdb: rdb, ttl: ttl}
	if err := s.purge(ctx); err != nil {
		rdb.Close()
		return nil, err
	}
	return s, nil
}

func (s *RedisStore) purge(ctx context.Context) error {
	iter := s.rdb.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("clearing stale session %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scanning stale sessions: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (model.FormState, bool, error) {
	raw, err := s.rdb.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.FormState{}, false, nil
	}
	if err != nil {
		return model.FormState{}, false, fmt.Errorf("loading session %s: %w", id, err)
	}

	var form model.FormState
	if err := json.Unmarshal(raw, &form); err != nil {
		return model.FormState{}, false, fmt.Errorf("decoding session %s: %w", id, err)
	}
	return form, true, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, form model.FormState) error {
	raw, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", id, err)
	}
	if err := s.rdb.Set(ctx, redisKeyPrefix+id, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("saving session %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}

// Cleanup is a no-op: Redis expires idle keys itself.
func (s *RedisStore) Cleanup(context.Context, time.Duration) (int, error) {
	return 0, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
