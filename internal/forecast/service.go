package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const upstreamSuccess = "success"

// Service implements the read-through forecast pipeline: cache lookup, a
// single upstream call on miss, and a best-effort cache write on success.
type Service struct {
	cache    Cache
	client   Client
	recorder Recorder
	group    *singleflight.Group
	logger   zerolog.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithRecorder reports cache and upstream events to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithCoalescing makes concurrent misses for the same cache key share one
// upstream call. Without it each miss calls the provider and the last cache
// write wins.
func WithCoalescing() Option {
	return func(s *Service) {
		s.group = &singleflight.Group{}
	}
}

// NewService creates a new Service.
func NewService(cache Cache, client Client, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		cache:    cache,
		client:   client,
		recorder: nopRecorder{},
		logger:   logger.With().Str("component", "ForecastService").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Call returns the forecast for req. A request without a location yields an
// empty payload without touching the cache or the provider. Cached payloads
// are returned as-is until their TTL expires.
func (s *Service) Call(ctx context.Context, req Request) Outcome {
	if !req.HasLocation() {
		return Success(Payload{})
	}

	if cached, ok := s.cache.Read(ctx, req); ok {
		s.recorder.CacheLookup(true)
		return Success(cached)
	}
	s.recorder.CacheLookup(false)

	if s.group == nil {
		return s.fetch(ctx, req)
	}

	// The shared fetch outlives any single caller; the HTTP client timeout
	// bounds it. Each caller stops waiting when its own context ends.
	ch := s.group.DoChan(CacheKey(req), func() (any, error) {
		return s.fetch(context.WithoutCancel(ctx), req), nil
	})
	select {
	case res := <-ch:
		out := res.Val.(Outcome)
		if res.Shared && out.OK() {
			out.Payload = out.Payload.Clone()
		}
		return out
	case <-ctx.Done():
		return Failure(&Error{
			Kind:    KindTransport,
			Message: DefaultFailureMessage,
			Err:     ctx.Err(),
		})
	}
}

func (s *Service) fetch(ctx context.Context, req Request) Outcome {
	log := s.logger.With().Str("location", req.Location).Str("postal_code", req.PostalCode).Logger()

	start := time.Now()
	resp, err := s.client.FetchForecast(ctx, req.Location)
	elapsed := time.Since(start)

	if err != nil {
		log.Error().Err(err).Msg("Weather API request could not be completed.")
		s.recorder.UpstreamRequest(string(KindTransport), elapsed)
		return Failure(&Error{
			Kind:    KindTransport,
			Message: DefaultFailureMessage,
			Err:     err,
		})
	}

	if !resp.Success {
		ferr := apiError(resp)
		log.Error().Int("status", resp.StatusCode).Str("message", ferr.Message).Msg("Weather API returned an error.")
		s.recorder.UpstreamRequest(string(KindAPI), elapsed)
		return Failure(ferr)
	}

	payload, err := parseForecast(resp.Body)
	if err != nil {
		log.Error().Err(err).Int("status", resp.StatusCode).Msg("Weather API returned a malformed forecast.")
		s.recorder.UpstreamRequest(string(KindMalformed), elapsed)
		return Failure(&Error{
			Kind:       KindMalformed,
			Message:    fmt.Sprintf("malformed weather API response: %v", err),
			StatusCode: resp.StatusCode,
			Err:        err,
		})
	}
	s.recorder.UpstreamRequest(upstreamSuccess, elapsed)

	// The fetched payload is valid even if caching it fails.
	if err := s.cache.Write(context.WithoutCancel(ctx), req, payload); err != nil {
		log.Warn().Err(err).Msg("Failed to cache forecast.")
		s.recorder.CacheWriteFailed()
	}

	return Success(payload)
}

var errEmptyForecast = errors.New("empty forecast body")

func parseForecast(body []byte) (Payload, error) {
	payload, err := decodePayload(body)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, errEmptyForecast
	}
	return payload, nil
}

// apiError builds the failure for a non-2xx response, preferring the
// provider's error.message when the body carries one.
func apiError(resp RawResponse) *Error {
	var envelope struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	message := DefaultFailureMessage
	if err := json.Unmarshal(resp.Body, &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
	}

	return &Error{
		Kind:       KindAPI,
		Message:    message,
		StatusCode: resp.StatusCode,
	}
}
