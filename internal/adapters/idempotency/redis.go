package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"conferencesessions/internal/domain"
)

const (
	keyPrefix    = "idempotency:session:"
	pendingValue = "pending"
)

// redisClient is the subset of *redis.Client the store uses.
type redisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisStore struct {
	client redisClient
}

// NewRedisStore returns an IdempotencyStore backed by Redis. A key is reserved with SETNX
// holding "pending" and later overwritten with the created session id.
func NewRedisStore(client redisClient) domain.IdempotencyStore {
	return &redisStore{client: client}
}

func (s *redisStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, *domain.IdempotencyRecord, error) {
	k := keyPrefix + key
	ok, err := s.client.SetNX(ctx, k, pendingValue, ttl).Result()
	if err != nil {
		return false, nil, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if ok {
		return true, nil, nil
	}
	val, err := s.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// Expired between SETNX and GET; try once more.
		ok, err = s.client.SetNX(ctx, k, pendingValue, ttl).Result()
		if err != nil {
			return false, nil, fmt.Errorf("reserve idempotency key: %w", err)
		}
		if ok {
			return true, nil, nil
		}
		return false, &domain.IdempotencyRecord{}, nil
	}
	if err != nil {
		return false, nil, fmt.Errorf("read idempotency key: %w", err)
	}
	if val == pendingValue {
		return false, &domain.IdempotencyRecord{}, nil
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false, nil, fmt.Errorf("corrupt idempotency value %q", val)
	}
	return false, &domain.IdempotencyRecord{SessionID: id}, nil
}

func (s *redisStore) Complete(ctx context.Context, key string, sessionID int64, ttl time.Duration) error {
	if err := s.client.Set(ctx, keyPrefix+key, strconv.FormatInt(sessionID, 10), ttl).Err(); err != nil {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return nil
}

func (s *redisStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}
