package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-forecast/internal/forecast"
)

// DefaultWeatherAPIBaseURL is WeatherAPI.com's forecast endpoint.
const DefaultWeatherAPIBaseURL = "https://api.weatherapi.com/v1/forecast.json"

// forecastDays is the fixed forecast horizon requested from the provider.
const forecastDays = 3

const weatherAPIName = "weatherapi"

// WeatherAPIConfig holds the credentials and endpoint for WeatherAPI.com.
type WeatherAPIConfig struct {
	APIKey  string
	BaseURL string
}

// WeatherAPIClient implements forecast.Client for WeatherAPI.com.
type WeatherAPIClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	logger  zerolog.Logger
}

// NewWeatherAPIClient creates a client; an empty BaseURL uses the public endpoint.
func NewWeatherAPIClient(client *http.Client, cfg WeatherAPIConfig, logger zerolog.Logger) *WeatherAPIClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultWeatherAPIBaseURL
	}

	return &WeatherAPIClient{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  client,
		circuit: newCircuitBreaker(weatherAPIName),
		logger:  logger.With().Str("component", "WeatherAPIClient").Str("provider", weatherAPIName).Logger(),
	}
}

// FetchForecast requests a three-day forecast (no air quality, no alerts) for
// location. It makes exactly one HTTP call and never retries.
func (p *WeatherAPIClient) FetchForecast(ctx context.Context, location string) (forecast.RawResponse, error) {
	if p.apiKey == "" {
		return forecast.RawResponse{}, ErrMissingAPIKey
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	values.Set("q", location)
	values.Set("days", strconv.Itoa(forecastDays))
	values.Set("aqi", "no")
	values.Set("alerts", "no")

	u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return forecast.RawResponse{}, fmt.Errorf("build weatherapi request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := doRequest(p.client, p.circuit, req)
	if err != nil {
		return forecast.RawResponse{}, fmt.Errorf("weatherapi forecast for %q: %w", location, err)
	}

	p.logger.Debug().Str("location", location).Int("status", resp.StatusCode).Msg("WeatherAPI responded.")
	return resp, nil
}
