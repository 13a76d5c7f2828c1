package providers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-forecast/internal/forecast"
)

// maxBodyBytes caps how much of a provider response is read.
const maxBodyBytes = 8 << 20

var (
	// ErrCircuitOpen is returned without contacting the provider while the
	// breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")
	// ErrMissingAPIKey is returned when no API key was configured.
	ErrMissingAPIKey = errors.New("weather api key is not configured")

	errServerError  = errors.New("server error")
	errNoHTTPClient = errors.New("http client not configured")
)

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// doRequest executes the HTTP request exactly once through the circuit
// breaker and returns the status and body. Transport errors and 5xx responses
// count against the breaker; a 5xx is still returned as a response so the
// caller can read the provider's error body.
func doRequest(client *http.Client, cb *gobreaker.CircuitBreaker, req *http.Request) (forecast.RawResponse, error) {
	if client == nil {
		return forecast.RawResponse{}, errNoHTTPClient
	}

	var (
		raw      forecast.RawResponse
		received bool
	)

	_, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if readErr != nil {
			return nil, fmt.Errorf("read response body: %w", readErr)
		}

		raw = forecast.RawResponse{
			Success:    resp.StatusCode >= 200 && resp.StatusCode < 300,
			Body:       body,
			StatusCode: resp.StatusCode,
		}
		received = true

		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
		}
		return nil, nil
	})

	if received {
		return raw, nil
	}

	// If circuit is open, the provider was not contacted.
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return forecast.RawResponse{}, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	return forecast.RawResponse{}, err
}
