package sip

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/redis/go-redis/v9"
)

// RedisRegistry is a SubscriptionRegistry shared by every process using the
// same Redis database. Records are CBOR encoded and expire with the key.
type RedisRegistry struct {
	client redis.Cmdable
	prefix string
}

// NewRedisRegistry creates a registry storing keys under prefix.
func NewRedisRegistry(client redis.Cmdable, prefix string) *RedisRegistry {
	return &RedisRegistry{client: client, prefix: prefix}
}

func (r *RedisRegistry) key(k string) string {
	return r.prefix + k
}

// Put stores rec with SET and the given TTL.
func (r *RedisRegistry) Put(ctx context.Context, key string, rec SubscriptionRecord, ttl time.Duration) error {
	if ttl <= 0 {
		return r.Delete(ctx, key)
	}
	data, err := cbor.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode subscription record: %w", err)
	}
	return r.client.Set(ctx, r.key(key), data, ttl).Err()
}

// Reserve stores rec with SET NX, so only one of several concurrent callers
// across all processes wins the key.
func (r *RedisRegistry) Reserve(ctx context.Context, key string, rec SubscriptionRecord, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}
	data, err := cbor.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("encode subscription record: %w", err)
	}
	return r.client.SetNX(ctx, r.key(key), data, ttl).Result()
}

// Get returns the stored record, or nil when the key is absent.
func (r *RedisRegistry) Get(ctx context.Context, key string) (*SubscriptionRecord, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rec SubscriptionRecord
	if err := cbor.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode subscription record %s: %w", key, err)
	}
	return &rec, nil
}

// Delete removes the given keys.
func (r *RedisRegistry) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	return r.client.Del(ctx, full...).Err()
}
