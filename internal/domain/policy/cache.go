package policy

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache holds the resolved active policy per organization.
//
// Fills are fenced by a per-organization generation: a reader takes the
// generation before loading from the database and the fill is dropped if an
// invalidation bumped it in between.
type Cache interface {
	Get(ctx context.Context, orgID string) (*Policy, bool, error)
	Generation(ctx context.Context, orgID string) (int64, error)
	SetIfCurrent(ctx context.Context, p *Policy, gen int64) (bool, error)
	Invalidate(ctx context.Context, orgID string) error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func cacheKey(orgID string) string {
	return "policy:" + orgID
}

func generationKey(orgID string) string {
	return "policy:" + orgID + ":gen"
}

func (c *RedisCache) Get(ctx context.Context, orgID string) (*Policy, bool, error) {
	raw, err := c.client.Get(ctx, cacheKey(orgID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var p Policy
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false, err
	}
	return &p, true, nil
}

func (c *RedisCache) Generation(ctx context.Context, orgID string) (int64, error) {
	n, err := c.client.Get(ctx, generationKey(orgID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// SetIfCurrent writes p under WATCH of the generation key and reports whether
// it was stored.
func (c *RedisCache) SetIfCurrent(ctx context.Context, p *Policy, gen int64) (bool, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return false, err
	}
	genKey := generationKey(p.OrganizationID)
	stored := false
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if errors.Is(err, redis.Nil) {
			cur, err = 0, nil
		}
		if err != nil {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKey(p.OrganizationID), raw, c.ttl)
			return nil
		})
		stored = err == nil
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return stored, err
}

// Invalidate bumps the generation and drops the cached policy atomically.
func (c *RedisCache) Invalidate(ctx context.Context, orgID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(orgID))
		pipe.Del(ctx, cacheKey(orgID))
		return nil
	})
	return err
}
