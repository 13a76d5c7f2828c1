package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTTL is how long a cached forecast is served before it expires.
const DefaultTTL = 30 * time.Minute

// cachedAtLayout renders cached.at, e.g. "Jan 02, 2024 03:30 PM".
const cachedAtLayout = "Jan 02, 2006 03:04 PM"

// RepositoryConfig tunes a Repository. Zero values fall back to DefaultTTL,
// UTC and time.Now.
type RepositoryConfig struct {
	TTL      time.Duration
	Location *time.Location
	Clock    Clock
}

// Repository reads and writes forecast payloads in a Store, keyed by
// CacheKey and stamped with CacheMetadata on write.
type Repository struct {
	store  Store
	ttl    time.Duration
	loc    *time.Location
	now    Clock
	logger zerolog.Logger
}

// NewRepository creates a Repository over the given store.
func NewRepository(store Store, cfg RepositoryConfig, logger zerolog.Logger) *Repository {
	r := &Repository{
		store:  store,
		ttl:    cfg.TTL,
		loc:    cfg.Location,
		now:    cfg.Clock,
		logger: logger.With().Str("component", "CacheRepository").Logger(),
	}
	if r.ttl <= 0 {
		r.ttl = DefaultTTL
	}
	if r.loc == nil {
		r.loc = time.UTC
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Read returns the cached payload for req. Misses, empty values, store errors
// and undecodable values all yield ok=false; store problems are logged.
func (r *Repository) Read(ctx context.Context, req Request) (Payload, bool) {
	if req.IsEmpty() {
		return nil, false
	}

	key := CacheKey(req)
	raw, found, err := r.store.Get(ctx, key)
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed, treating as miss.")
		return nil, false
	}
	if !found {
		r.logger.Debug().Str("key", key).Msg("Cache miss.")
		return nil, false
	}

	payload, err := normalize(raw)
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("Cached value could not be decoded, treating as miss.")
		return nil, false
	}
	if payload == nil {
		return nil, false
	}

	r.logger.Debug().Str("key", key).Msg("Cache hit.")
	return payload, true
}

// Write stores payload merged with cache metadata under the request's key.
// The caller's payload is not modified.
func (r *Repository) Write(ctx context.Context, req Request, payload Payload) error {
	if req.IsEmpty() {
		return ErrEmptyRequest
	}

	merged := payload.Clone()
	if merged == nil {
		merged = make(Payload, 1)
	}
	merged[CachedField] = r.metadata(req).fields()

	key := CacheKey(req)
	if err := r.store.Set(ctx, key, merged, r.ttl); err != nil {
		return fmt.Errorf("cache write for %s: %w", key, err)
	}

	r.logger.Debug().Str("key", key).Dur("ttl", r.ttl).Msg("Forecast cached.")
	return nil
}

func (r *Repository) metadata(req Request) CacheMetadata {
	return CacheMetadata{
		At:         r.now().In(r.loc).Format(cachedAtLayout),
		Location:   optional(req.Location),
		PostalCode: optional(req.PostalCode),
	}
}

// normalize accepts either representation a store may hand back.
func normalize(raw any) (Payload, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case Payload:
		return v.Clone(), nil
	case map[string]any:
		return Payload(v).Clone(), nil
	case string:
		return decodePayload([]byte(v))
	case []byte:
		return decodePayload(v)
	default:
		return nil, fmt.Errorf("unsupported cached value type %T", raw)
	}
}

// decodePayload returns nil, nil for blank input and JSON null.
func decodePayload(b []byte) (Payload, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}
	var p Payload
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return p, nil
}
