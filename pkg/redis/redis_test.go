package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)

	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), "test")

	allowed, remaining, err := limiter.Allow(context.Background(), BuildTriggerRateLimit)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, BuildTriggerRateLimit.Limit, remaining)

	assert.NoError(t, limiter.Wait(context.Background(), BuildTriggerRateLimit))
}

func integrationClient(t *testing.T) *Client {
	t.Helper()
	host := os.Getenv("REDIS_HOST")
	if host == "" || testing.Short() {
		t.Skip("REDIS_HOST not set, skipping integration test")
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	client, err := New(&config.Config{Redis: config.RedisConfig{Host: host, Port: port, Enabled: true}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRateLimiter_CountsBurst(t *testing.T) {
	client := integrationClient(t)
	limiter := NewRateLimiter(client, "test-"+uuid.NewString())
	cfg := RateLimitConfig{Key: "burst", Limit: 3, Window: time.Minute}
	ctx := context.Background()

	// 같은 밀리초 요청도 모두 집계
	allowed := 0
	for i := 0; i < 5; i++ {
		ok, _, err := limiter.Allow(ctx, cfg)
		require.NoError(t, err)
		if ok {
			allowed++
		}
	}
	assert.Equal(t, cfg.Limit, allowed)
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")
	ctx := context.Background()

	var result string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, cache.Set(ctx, "key", "value", TTLShort))
	assert.NoError(t, cache.Delete(ctx, "key"))

	deleted, err := cache.DeletePrefix(ctx, "curve:")
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestCache_GetOrSetDisabledCallsLoader(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")

	calls := 0
	var dest []int
	err := cache.GetOrSet(context.Background(), "numbers", &dest, TTLShort, func() (interface{}, error) {
		calls++
		return []int{1, 2, 3}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []int{1, 2, 3}, dest)
}

func TestCacheKeys(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{
			name:     "curve key",
			got:      CurveKey("mixed", "Coal", "API2", "ICE", "2019-01-01", "2019-12-31"),
			expected: "curve:mixed:coal:api2:ice:2019-01-01:2019-12-31",
		},
		{
			name:     "curve key wildcards",
			got:      CurveKey("single", "gas", "", "", "", ""),
			expected: "curve:single:gas:*:*:*:*",
		},
		{
			name:     "full year key",
			got:      FullYearKey("Brent", "IPE e-Brent", 2019),
			expected: "fullyear:brent:ipe e-brent:2019",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}
