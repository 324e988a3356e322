// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipeapp_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipeapp_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	// Domain
	RecipeOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipeapp_recipe_operations_total",
			Help: "Recipe writes by operation",
		},
		[]string{"operation"}, // created, updated, deleted
	)

	ImageUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipeapp_image_uploads_total",
			Help: "Recipe image uploads by outcome",
		},
		[]string{"outcome"}, // stored, invalid, error
	)

	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipeapp_auth_attempts_total",
			Help: "Token requests by outcome",
		},
		[]string{"outcome"}, // success, failure
	)

	// MediaBreakerState is 0 closed, 1 half-open, 2 open.
	MediaBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recipeapp_media_circuit_breaker_state",
			Help: "Media store circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipeapp_events_published_total",
			Help: "Recipe events handed to the broker by outcome",
		},
		[]string{"routing_key", "outcome"},
	)
)

// Middleware records request count and latency per matched route.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		method := c.Method()

		HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}
