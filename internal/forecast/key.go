package forecast

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/i474232898/weather-forecast/internal/common"
)

const cacheKeyPrefix = "weather_forecast_"

// hashedKeyMarker cannot appear in a slug, so hashed keys never collide with
// slugged ones.
const hashedKeyMarker = "~"

// CacheKey derives the cache key for a request. A postal code wins and is
// used verbatim; otherwise the location is slugged. A location with no
// letters or digits (emoji, punctuation) is keyed by a hash of its trimmed
// text. Requests with neither field yield the bare prefix and must be
// rejected by callers before lookup.
func CacheKey(req Request) string {
	if req.HasPostalCode() {
		return cacheKeyPrefix + req.PostalCode
	}
	if slug := common.Parameterize(req.Location); slug != "" {
		return cacheKeyPrefix + slug
	}
	location := strings.TrimSpace(req.Location)
	if location == "" {
		return cacheKeyPrefix
	}
	return fmt.Sprintf("%s%s%016x", cacheKeyPrefix, hashedKeyMarker, xxhash.Sum64String(location))
}
