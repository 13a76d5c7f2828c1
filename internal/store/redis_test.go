package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-forecast/internal/store"
)

func newRedisStore(t *testing.T, prefix string) (*store.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return store.NewRedisStore(client, prefix, zerolog.Nop()), mr
}

func TestRedisStore_SetAndGet(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t, "")

	t.Run("Structured value is stored as JSON", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "weather_forecast_10001", map[string]any{"temp": 70}, 30*time.Minute))

		v, ok, err := s.Get(ctx, "weather_forecast_10001")
		require.NoError(t, err)
		require.True(t, ok)
		assert.JSONEq(t, `{"temp":70}`, v.(string))
		assert.Equal(t, 30*time.Minute, mr.TTL("weather_forecast_10001"))
	})

	t.Run("String value is stored verbatim", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "raw", `{"temp":1}`, time.Minute))

		got, err := mr.Get("raw")
		require.NoError(t, err)
		assert.Equal(t, `{"temp":1}`, got)
	})

	t.Run("Miss", func(t *testing.T) {
		v, ok, err := s.Get(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, v)
	})
}

func TestRedisStore_TTLExpires(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t, "")

	require.NoError(t, s.Set(ctx, "k", map[string]any{"temp": 70}, 30*time.Minute))

	mr.FastForward(29 * time.Minute)
	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(time.Minute)
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_Prefix(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t, "forecasts")

	require.NoError(t, s.Set(ctx, "weather_forecast_10001", "x", time.Minute))
	assert.True(t, mr.Exists("forecasts:weather_forecast_10001"))

	_, ok, err := s.Get(ctx, "weather_forecast_10001")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisStore_ErrorsAndHealth(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t, "")

	assert.Equal(t, "cache:redis", s.Name())
	assert.NoError(t, s.Check(ctx))

	mr.Close()

	assert.Error(t, s.Check(ctx))
	_, ok, err := s.Get(ctx, "k")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, s.Set(ctx, "k", "v", time.Minute))
}

func TestNewRedisClient(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	client, err := store.NewRedisClient(ctx, &store.RedisConfig{Addr: addr}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, client.Close())

	mr.Close()
	_, err = store.NewRedisClient(ctx, &store.RedisConfig{Addr: addr}, zerolog.Nop())
	assert.Error(t, err)
}
