package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/config"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

func setupTestCache(t *testing.T) *Cache {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
		Password:     "",
		DB:           0,
		User:         "",
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	return cache
}

func TestSetAndGet(t *testing.T) {
	cache := setupTestCache(t)

	expected := models.Subscription{
		Email:        "user@example.com",
		StartDate:    "2024-01-01",
		StartTime:    "00:00",
		DurationDays: 30,
		EndDate:      time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	err := cache.Set("subscriptions:all", expected, time.Minute)
	require.NoError(t, err)

	var actual models.Subscription
	found, err := cache.Get("subscriptions:all", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected.Email, actual.Email)
	assert.True(t, expected.EndDate.Equal(actual.EndDate))
}

func TestGetNotFound(t *testing.T) {
	cache := setupTestCache(t)

	var out models.Subscription
	found, err := cache.Get("no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache := setupTestCache(t)

	require.NoError(t, cache.Set("subscriptions:all", "value", time.Minute))
	require.NoError(t, cache.Invalidate("subscriptions:all"))

	var out string
	found, err := cache.Get("subscriptions:all", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidateMissingKey(t *testing.T) {
	cache := setupTestCache(t)

	require.NoError(t, cache.Invalidate("no_such_key"))
}
