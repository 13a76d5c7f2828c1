package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/i474232898/weather-forecast/internal/forecast"
)

const (
	defaultInterval = 15 * time.Minute
	requestTimeout  = 30 * time.Second
)

// Forecaster is the part of forecast.Service the warmer needs.
type Forecaster interface {
	Call(ctx context.Context, req forecast.Request) forecast.Outcome
}

// Scheduler periodically requests forecasts for configured locations so
// their cache entries are refreshed soon after they expire.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Forecaster
	requests  []forecast.Request
	interval  time.Duration
	logger    zerolog.Logger
}

// New creates a new Scheduler.
func New(requests []forecast.Request, interval time.Duration, service Forecaster, logger zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		requests:  requests,
		interval:  interval,
		logger:    logger.With().Str("component", "CacheWarmer").Logger(),
	}
}

// Start schedules the warm-up job (first run immediately) and starts the
// underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.requests) == 0 {
		s.logger.Info().Msg("No warm locations configured; nothing to schedule.")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info().Int("locations", len(s.requests)).Dur("interval", s.interval).Msg("Cache warmer started.")
	return nil
}

// RunOnce requests every configured forecast concurrently and waits for all
// of them. Failures are logged and never stop the other requests.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.logger.Debug().Msg("Running cache warm-up job.")

	var wg sync.WaitGroup
	for _, req := range s.requests {
		req := req
		wg.Add(1)
		go func() {
			defer wg.Done()

			reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
			defer cancel()

			out := s.service.Call(reqCtx, req)
			if !out.OK() {
				s.logger.Warn().
					Str("location", req.Location).
					Str("postal_code", req.PostalCode).
					Str("kind", string(out.Err.Kind)).
					Err(out.Err).
					Msg("Warm-up fetch failed.")
			}
		}()
	}
	wg.Wait()

	s.logger.Debug().Msg("Completed cache warm-up job.")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
