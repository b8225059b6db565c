package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the record under "<prefix>:tok:<clientID>".
type RedisStore struct {
	redis    redis.UniversalClient
	prefix   string
	clientID string
	now      func() time.Time
}

// NewRedisStore creates a store. An empty prefix defaults to "dashauth" and an
// empty clientID to "default".
func NewRedisStore(client redis.UniversalClient, prefix, clientID string) *RedisStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "dashauth"
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		clientID = "default"
	}
	return &RedisStore{
		redis:    client,
		prefix:   prefix,
		clientID: clientID,
		now:      time.Now,
	}
}

func (s *RedisStore) key() string {
	return s.prefix + ":tok:" + s.clientID
}

func (s *RedisStore) Save(ctx context.Context, rec Record, ttl time.Duration) error {
	if rec.SavedAt.IsZero() {
		rec.SavedAt = s.now()
	}
	data, err := Encode(rec)
	if err != nil {
		return err
	}
	if ttl < 0 {
		ttl = 0
	}

	if err := s.redis.Set(ctx, s.key(), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Load deletes and reports ErrNotFound for a record it cannot decode, so a
// format change never locks the operator out.
func (s *RedisStore) Load(ctx context.Context) (Record, error) {
	data, err := s.redis.Get(ctx, s.key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	rec, err := Decode(data)
	if err != nil {
		if delErr := s.Delete(ctx); delErr != nil {
			return Record{}, delErr
		}
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *RedisStore) Delete(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// TTL reports the remaining lifetime of the stored record. It returns
// ErrNotFound when nothing is stored and 0 for records without expiry.
func (s *RedisStore) TTL(ctx context.Context) (time.Duration, error) {
	ttl, err := s.redis.PTTL(ctx, s.key()).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	switch {
	case ttl == -2:
		return 0, ErrNotFound
	case ttl < 0:
		return 0, nil
	}
	return ttl, nil
}

// Ping measures a Redis round-trip.
func (s *RedisStore) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
