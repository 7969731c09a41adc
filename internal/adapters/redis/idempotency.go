package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robertarktes/movie-ticket-booking/internal/idempotency"
)

// Idempotency persists replayable responses next to an in-flight lock.
type Idempotency struct {
	cache *Cache
}

func NewIdempotency(cache *Cache) *Idempotency {
	return &Idempotency{cache: cache}
}

func (i *Idempotency) Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	return i.cache.AcquireLock(ctx, "idemp:"+key, owner, ttl)
}

func (i *Idempotency) Release(ctx context.Context, key, owner string) error {
	return i.cache.ReleaseLock(ctx, "idemp:"+key, owner)
}

func (i *Idempotency) Get(ctx context.Context, key string) (*idempotency.Response, error) {
	val, err := i.cache.Client().Get(ctx, "idemp:"+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var resp idempotency.Response
	err = json.Unmarshal(val, &resp)
	return &resp, err
}

func (i *Idempotency) Set(ctx context.Context, key string, resp idempotency.Response, ttl time.Duration) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return i.cache.Client().Set(ctx, "idemp:"+key, data, ttl).Err()
}
