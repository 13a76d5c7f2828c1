package forecast

import (
	"context"
	"time"
)

// RawResponse is what a provider returned for a single HTTP call.
// Success reflects the HTTP status only (2xx), not the body contents.
type RawResponse struct {
	Success    bool
	Body       []byte
	StatusCode int
}

// Client abstracts the upstream forecast provider (e.g. WeatherAPI.com).
// Implementations perform exactly one network call per invocation.
type Client interface {
	FetchForecast(ctx context.Context, location string) (RawResponse, error)
}

// Store is the key-value contract cache backends (in-memory, Redis) satisfy.
// Get may return a structured Payload or its JSON encoding as a string.
type Store interface {
	Get(ctx context.Context, key string) (any, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Cache is the forecast-aware view over a Store used by the Service.
type Cache interface {
	Read(ctx context.Context, req Request) (Payload, bool)
	Write(ctx context.Context, req Request, payload Payload) error
}

// Recorder receives pipeline events for metrics.
type Recorder interface {
	CacheLookup(hit bool)
	CacheWriteFailed()
	UpstreamRequest(outcome string, elapsed time.Duration)
}

// Clock returns the current time; tests inject fixed clocks.
type Clock func() time.Time

type nopRecorder struct{}

func (nopRecorder) CacheLookup(bool)                      {}
func (nopRecorder) CacheWriteFailed()                     {}
func (nopRecorder) UpstreamRequest(string, time.Duration) {}
