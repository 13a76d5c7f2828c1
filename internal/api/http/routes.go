package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/weather-forecast/internal/forecast"
)

var validate = validator.New()

// Forecaster is the part of forecast.Service the handlers need.
type Forecaster interface {
	Call(ctx context.Context, req forecast.Request) forecast.Outcome
}

// HealthChecker abstracts a dependency health probe.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// RegisterRoutes wires the forecast handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service Forecaster) {
	handler := func(c *fiber.Ctx) error {
		var q forecastQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		out := service.Call(c.UserContext(), q.toRequest())
		if !out.OK() {
			return &forecastFailure{status: failureStatus(out.Err), err: out.Err}
		}
		if out.Payload == nil {
			return c.JSON(fiber.Map{})
		}
		return c.JSON(out.Payload)
	}

	app.Get("/api/v1/forecast", handler)
	app.Post("/weather", handler)
}

// RegisterHealth exposes GET /health reporting the state of each checker.
func RegisterHealth(app *fiber.App, checkers ...HealthChecker) {
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		deps := make(map[string]string, len(checkers))
		overall := "ok"
		for _, hc := range checkers {
			if hc == nil {
				continue
			}
			if err := hc.Check(ctx); err != nil {
				deps[hc.Name()] = "unhealthy"
				overall = "degraded"
				continue
			}
			deps[hc.Name()] = "healthy"
		}

		code := fiber.StatusOK
		if overall != "ok" {
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status":       overall,
			"service":      "weather-forecast",
			"timestamp":    time.Now().UTC().Format(time.RFC3339),
			"dependencies": deps,
		})
	})
}

// RegisterMetrics exposes the Prometheus registry on GET /metrics.
func RegisterMetrics(app *fiber.App, gatherer prometheus.Gatherer) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

// ErrorHandler renders every handler error as {"error": true, "message": ...}.
// Forecast failures also carry their kind.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	body := fiber.Map{
		"error":   true,
		"message": err.Error(),
	}

	var ff *forecastFailure
	var fe *fiber.Error
	switch {
	case errors.As(err, &ff):
		code = ff.status
		body["kind"] = ff.err.Kind
	case errors.As(err, &fe):
		code = fe.Code
	}

	return c.Status(code).JSON(body)
}

// forecastFailure carries a classified forecast error to ErrorHandler.
type forecastFailure struct {
	status int
	err    *forecast.Error
}

func (f *forecastFailure) Error() string { return f.err.Message }
func (f *forecastFailure) Unwrap() error { return f.err }

// failureStatus maps a forecast failure to a response status: the provider
// rejecting the query is the caller's problem, anything else is a bad gateway.
func failureStatus(err *forecast.Error) int {
	if err.Kind == forecast.KindAPI && err.StatusCode >= 400 && err.StatusCode < 500 {
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusBadGateway
}

// forecastQuery holds the request parameters. Query string, JSON and form
// bodies are all accepted.
type forecastQuery struct {
	Location   string `query:"location" json:"location" form:"location" validate:"omitempty,max=256"`
	PostalCode string `query:"postal_code" json:"postal_code" form:"postal_code" validate:"omitempty,max=32"`
}

func (q *forecastQuery) bind(c *fiber.Ctx) error {
	if err := c.QueryParser(q); err != nil {
		return err
	}
	if c.Method() == fiber.MethodPost && len(c.Body()) > 0 {
		if err := c.BodyParser(q); err != nil {
			return err
		}
	}
	return nil
}

func (q forecastQuery) toRequest() forecast.Request {
	return forecast.Request{
		Location:   q.Location,
		PostalCode: q.PostalCode,
	}
}
