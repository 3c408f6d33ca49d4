package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled requests by route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "instaclone_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration records request latency by route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "instaclone_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// WebSocketConnections is the gauge of registered realtime connections on this node.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "instaclone_websocket_connections",
		Help: "Number of registered WebSocket connections",
	})

	// RealtimeDeliveries counts push attempts by event type and outcome.
	RealtimeDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "instaclone_realtime_deliveries_total",
		Help: "Realtime event push attempts by event type and outcome",
	}, []string{"event_type", "outcome"})

	// CounterCorrections counts denormalized counter rows rewritten by reconciliation.
	CounterCorrections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "instaclone_counter_corrections_total",
		Help: "Denormalized counter rows corrected by the reconciler",
	}, []string{"counter"})

	// StoriesSwept counts expired stories removed by the sweeper.
	StoriesSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "instaclone_stories_swept_total",
		Help: "Expired stories hard-deleted by the sweeper",
	})
)

// EchoMiddleware records request counts and latency per route template.
func EchoMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Response().Status)).Inc()
			HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
