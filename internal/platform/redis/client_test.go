package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackhub/internal/platform/config"
	platformredis "hackhub/internal/platform/redis"
	"hackhub/pkg/platform/sentinel"
)

func TestDial_UnsetURLDisablesRevocation(t *testing.T) {
	c, err := platformredis.Dial(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestOptions(t *testing.T) {
	t.Run("applies pool and timeouts", func(t *testing.T) {
		opts, err := platformredis.Options(config.RedisConfig{
			URL:          "redis://cache.internal:6380/2",
			PoolSize:     7,
			MinIdleConns: 1,
			DialTimeout:  time.Second,
			ReadTimeout:  2 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
		require.NoError(t, err)
		assert.Equal(t, "cache.internal:6380", opts.Addr)
		assert.Equal(t, 2, opts.DB)
		assert.Equal(t, 7, opts.PoolSize)
		assert.Equal(t, 1, opts.MinIdleConns)
		assert.Equal(t, time.Second, opts.DialTimeout)
		assert.Equal(t, 2*time.Second, opts.ReadTimeout)
		assert.Equal(t, 3*time.Second, opts.WriteTimeout)
	})

	t.Run("rejects a non-redis scheme", func(t *testing.T) {
		_, err := platformredis.Options(config.RedisConfig{URL: "http://cache.internal:6379"})
		assert.Error(t, err)
	})
}

func TestDial_UnreachableStoreIsUnavailable(t *testing.T) {
	c, err := platformredis.Dial(context.Background(), config.RedisConfig{
		URL:         "redis://127.0.0.1:1/0",
		PoolSize:    1,
		DialTimeout: 200 * time.Millisecond,
	}, platformredis.WithHealthTimeout(time.Second))
	require.Error(t, err)
	assert.Nil(t, c)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}
