package forecast

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheKey(t *testing.T) {
	cases := []struct {
		name string
		req  Request
		want string
	}{
		{"postal code", Request{PostalCode: "10001"}, "weather_forecast_10001"},
		{"postal code wins over location", Request{Location: "New York", PostalCode: "10001"}, "weather_forecast_10001"},
		{"postal code used verbatim", Request{PostalCode: "SW1A 1AA"}, "weather_forecast_SW1A 1AA"},
		{"location slug", Request{Location: "San Francisco, CA"}, "weather_forecast_san-francisco-ca"},
		{"location diacritics", Request{Location: "Zürich"}, "weather_forecast_zurich"},
		{"blank postal code falls back to location", Request{Location: "New York", PostalCode: "  "}, "weather_forecast_new-york"},
		{"cyrillic location", Request{Location: "Москва"}, "weather_forecast_москва"},
		{"cjk location", Request{Location: "東京"}, "weather_forecast_東京"},
		{"empty request", Request{}, "weather_forecast_"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CacheKey(tc.req))
		})
	}
}

func TestCacheKeyIsDeterministic(t *testing.T) {
	req := Request{Location: "San Francisco, CA"}
	first := CacheKey(req)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, CacheKey(req))
	}
}

func TestCacheKey_DistinctScriptsDoNotCollide(t *testing.T) {
	keys := map[string]string{}
	for _, loc := range []string{"Москва", "Киев", "東京", "大阪", "Paris"} {
		key := CacheKey(Request{Location: loc})
		prev, dup := keys[key]
		assert.Falsef(t, dup, "%q and %q share key %q", prev, loc, key)
		keys[key] = loc
	}
}

func TestCacheKey_UnsluggableLocationIsHashed(t *testing.T) {
	sun := CacheKey(Request{Location: "☀️"})
	cloud := CacheKey(Request{Location: "☁️"})

	assert.True(t, strings.HasPrefix(sun, cacheKeyPrefix+hashedKeyMarker), sun)
	assert.Len(t, sun, len(cacheKeyPrefix)+len(hashedKeyMarker)+16)
	assert.NotEqual(t, sun, cloud)
	assert.Equal(t, sun, CacheKey(Request{Location: "  ☀️ "}), "surrounding whitespace is ignored")
	assert.NotEqual(t, cacheKeyPrefix, CacheKey(Request{Location: "***"}))
}
