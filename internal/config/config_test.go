package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-forecast/internal/forecast"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"PORT", "WEATHERAPI_API_KEY", "WEATHERAPI_BASE_URL", "HTTP_TIMEOUT",
		"CACHE_BACKEND", "CACHE_TTL", "CACHE_MAX_ENTRIES", "CACHE_TIMEZONE",
		"REDIS_ADDR", "REDIS_DB", "REDIS_KEY_PREFIX", "FORECAST_COALESCE_MISSES",
		"WARM_LOCATIONS", "WARM_INTERVAL", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, CacheBackendMemory, cfg.CacheBackend)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 1000, cfg.CacheMaxEntries)
	assert.Equal(t, "America/New_York", cfg.CacheTimezone.String())
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.False(t, cfg.CoalesceMisses)
	assert.Empty(t, cfg.WarmRequests)
	assert.Equal(t, 15*time.Minute, cfg.WarmInterval)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "Redis")
	t.Setenv("CACHE_TTL", "5m")
	t.Setenv("CACHE_TIMEZONE", "UTC")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("FORECAST_COALESCE_MISSES", "true")
	t.Setenv("WARM_LOCATIONS", "New York|10001; Paris ;;")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, CacheBackendRedis, cfg.CacheBackend)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, time.UTC, cfg.CacheTimezone)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.CoalesceMisses)
	assert.Equal(t, []forecast.Request{
		{Location: "New York", PostalCode: "10001"},
		{Location: "Paris"},
	}, cfg.WarmRequests)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"backend", "CACHE_BACKEND", "memcached"},
		{"ttl", "CACHE_TTL", "half an hour"},
		{"timezone", "CACHE_TIMEZONE", "Mars/Olympus_Mons"},
		{"timeout", "HTTP_TIMEOUT", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestParseWarmLocations(t *testing.T) {
	assert.Nil(t, parseWarmLocations(""))
	assert.Equal(t, []forecast.Request{{Location: "Austin", PostalCode: "78701"}},
		parseWarmLocations("|12345;Austin|78701"))
}

func TestGetenvInt_FallsBackOnGarbage(t *testing.T) {
	t.Setenv("CACHE_MAX_ENTRIES", "lots")
	assert.Equal(t, 7, getenvInt("CACHE_MAX_ENTRIES", 7))
}
