package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	httpapi "github.com/i474232898/weather-forecast/internal/api/http"
	"github.com/i474232898/weather-forecast/internal/config"
	"github.com/i474232898/weather-forecast/internal/forecast"
	"github.com/i474232898/weather-forecast/internal/forecast/providers"
	"github.com/i474232898/weather-forecast/internal/metrics"
	"github.com/i474232898/weather-forecast/internal/scheduler"
	"github.com/i474232898/weather-forecast/internal/store"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("Failed to load config")
	}

	log := newLogger(cfg)

	if cfg.WeatherAPIKey == "" {
		log.Warn().Msg("WEATHERAPI_API_KEY is not set; every cache miss will fail.")
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStartup()

	// Cache backend.
	var (
		cacheStore forecast.Store
		checker    httpapi.HealthChecker
	)
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		rdb, err := store.NewRedisClient(startupCtx, &store.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Redis client")
		}
		defer rdb.Close()

		rs := store.NewRedisStore(rdb, cfg.RedisKeyPrefix, log)
		cacheStore, checker = rs, rs
	default:
		ms := store.NewMemoryStore(cfg.CacheMaxEntries, time.Now)
		cacheStore, checker = ms, ms
	}

	repo := forecast.NewRepository(cacheStore, forecast.RepositoryConfig{
		TTL:      cfg.CacheTTL,
		Location: cfg.CacheTimezone,
	}, log)

	client := providers.NewWeatherAPIClient(httpClient, providers.WeatherAPIConfig{
		APIKey:  cfg.WeatherAPIKey,
		BaseURL: cfg.WeatherAPIBaseURL,
	}, log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []forecast.Option{forecast.WithRecorder(metrics.New(registry))}
	if cfg.CoalesceMisses {
		opts = append(opts, forecast.WithCoalescing())
	}

	// Core service orchestrating cache and provider.
	service := forecast.NewService(repo, client, log, opts...)

	// Scheduler that keeps configured locations warm.
	sched := scheduler.New(cfg.WarmRequests, cfg.WarmInterval, service, log)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-forecast",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.HTTPTimeout + 5*time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New())
	app.Use(recover.New())

	httpapi.RegisterHealth(app, checker)
	httpapi.RegisterMetrics(app, registry)
	httpapi.RegisterRoutes(app, service)

	go func() {
		log.Info().Str("port", cfg.Port).Str("cache", cfg.CacheBackend).Msg("HTTP server listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("Fiber server stopped")
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during shutdown")
	}
}

func newLogger(cfg *config.AppConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.LogFormat == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(level).With().Timestamp().Str("service", "weather-forecast").Logger()
}
