package redis_test

import (
	"context"
	"testing"
	"time"

	"dialog-collator/core/redis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Disabled(t *testing.T) {
	client, err := redis.New(context.Background(), redis.Config{})
	assert.NoError(t, err)
	assert.Nil(t, client)
}

func TestNew_InvalidURL(t *testing.T) {
	client, err := redis.New(context.Background(), redis.Config{URL: "http://not-redis"})
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestOptions(t *testing.T) {
	opts, err := redis.Options(redis.Config{
		URL:            "redis://:secret@cache.local:6380/2",
		PoolSize:       7,
		MinIdleConns:   3,
		TimeoutSeconds: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, "cache.local:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, 3, opts.MinIdleConns)
	assert.Equal(t, 2*time.Second, opts.ReadTimeout)
}
