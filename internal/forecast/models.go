package forecast

import (
	"strings"
)

// CachedField is the reserved payload field holding CacheMetadata.
const CachedField = "cached"

// Request identifies the place a forecast is asked for.
// Empty strings are treated as absent values.
type Request struct {
	Location   string `json:"location"`
	PostalCode string `json:"postal_code"`
}

// HasLocation reports whether a non-blank location was given.
func (r Request) HasLocation() bool {
	return strings.TrimSpace(r.Location) != ""
}

// HasPostalCode reports whether a non-blank postal code was given.
func (r Request) HasPostalCode() bool {
	return strings.TrimSpace(r.PostalCode) != ""
}

// IsEmpty reports whether neither a location nor a postal code was given.
func (r Request) IsEmpty() bool {
	return !r.HasLocation() && !r.HasPostalCode()
}

// Payload is the provider's forecast document (current conditions, forecast
// days, location descriptor). Fields are passed through untouched.
type Payload map[string]any

// Clone returns a deep copy of p. Nested objects and arrays are copied so a
// caller mutating its payload never reaches into a cached entry.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Payload:
		return t.Clone()
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = cloneValue(e)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = cloneValue(e)
		}
		return s
	default:
		return v
	}
}

// Cached extracts the metadata attached when the payload was written to the
// cache. ok is false for freshly fetched payloads.
func (p Payload) Cached() (CacheMetadata, bool) {
	raw, ok := p[CachedField].(map[string]any)
	if !ok {
		return CacheMetadata{}, false
	}

	var meta CacheMetadata
	meta.At, _ = raw["at"].(string)
	if v, ok := raw["location"].(string); ok {
		meta.Location = &v
	}
	if v, ok := raw["postal_code"].(string); ok {
		meta.PostalCode = &v
	}
	return meta, true
}

// CacheMetadata records when and for which request a payload was cached.
type CacheMetadata struct {
	At         string  `json:"at"`
	Location   *string `json:"location"`
	PostalCode *string `json:"postal_code"`
}

// fields renders the metadata in the same shape a JSON round trip produces,
// so payloads read from any store compare equal.
func (m CacheMetadata) fields() map[string]any {
	out := map[string]any{
		"at":          m.At,
		"location":    nil,
		"postal_code": nil,
	}
	if m.Location != nil {
		out["location"] = *m.Location
	}
	if m.PostalCode != nil {
		out["postal_code"] = *m.PostalCode
	}
	return out
}

// Outcome is the result of a forecast call: either a payload or a failure.
type Outcome struct {
	Payload Payload
	Err     *Error
}

// Success wraps a payload.
func Success(p Payload) Outcome {
	return Outcome{Payload: p}
}

// Failure wraps a classified error.
func Failure(err *Error) Outcome {
	return Outcome{Err: err}
}

// OK reports whether the outcome carries a payload.
func (o Outcome) OK() bool {
	return o.Err == nil
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
