package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-forecast/internal/forecast"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

type AppConfig struct {
	Port string

	WeatherAPIKey     string
	WeatherAPIBaseURL string
	HTTPTimeout       time.Duration

	CacheBackend    string
	CacheTTL        time.Duration
	CacheMaxEntries int            // memory backend only (0 = unlimited)
	CacheTimezone   *time.Location // zone used to render cached.at

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	// CoalesceMisses shares one upstream call between concurrent misses for a key.
	CoalesceMisses bool

	// Forecasts kept warm by the scheduler.
	WarmRequests []forecast.Request
	WarmInterval time.Duration

	LogLevel  string
	LogFormat string // json or console
}

// Load reads configuration from environment with sensible defaults.
// Values from a .env file are used when present.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{
		Port:              getenvDefault("PORT", "8080"),
		WeatherAPIKey:     os.Getenv("WEATHERAPI_API_KEY"),
		WeatherAPIBaseURL: getenvDefault("WEATHERAPI_BASE_URL", "https://api.weatherapi.com/v1/forecast.json"),
		CacheBackend:      strings.ToLower(getenvDefault("CACHE_BACKEND", CacheBackendMemory)),
		CacheMaxEntries:   getenvInt("CACHE_MAX_ENTRIES", 1000),
		RedisAddr:         getenvDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getenvInt("REDIS_DB", 0),
		RedisKeyPrefix:    os.Getenv("REDIS_KEY_PREFIX"),
		CoalesceMisses:    getenvBool("FORECAST_COALESCE_MISSES", false),
		LogLevel:          getenvDefault("LOG_LEVEL", "info"),
		LogFormat:         getenvDefault("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", "30m"); err != nil {
		return nil, err
	}
	if cfg.WarmInterval, err = getenvDuration("WARM_INTERVAL", "15m"); err != nil {
		return nil, err
	}

	switch cfg.CacheBackend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return nil, fmt.Errorf("invalid CACHE_BACKEND %q: must be %q or %q", cfg.CacheBackend, CacheBackendMemory, CacheBackendRedis)
	}

	tz := getenvDefault("CACHE_TIMEZONE", "America/New_York")
	cfg.CacheTimezone, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TIMEZONE: %w", err)
	}

	cfg.WarmRequests = parseWarmLocations(os.Getenv("WARM_LOCATIONS"))

	return cfg, nil
}

// parseWarmLocations reads entries separated by ";", each either
// "location" or "location|postal_code". Blank entries are skipped.
func parseWarmLocations(raw string) []forecast.Request {
	var reqs []forecast.Request
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		location, postal, _ := strings.Cut(entry, "|")
		req := forecast.Request{
			Location:   strings.TrimSpace(location),
			PostalCode: strings.TrimSpace(postal),
		}
		if !req.HasLocation() {
			continue
		}
		reqs = append(reqs, req)
	}
	return reqs
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
