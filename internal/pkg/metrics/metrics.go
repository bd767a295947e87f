package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solarsite",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "solarsite",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "solarsite",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Sweep metrics
	CellFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solarsite",
		Subsystem: "sweep",
		Name:      "cell_fetches_total",
		Help:      "Lattice cell irradiance fetches by outcome (ok, failed, timeout)",
	}, []string{"outcome"})

	SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "solarsite",
		Subsystem: "sweep",
		Name:      "duration_seconds",
		Help:      "Wall-clock duration of a full grid sweep",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 45, 90, 180},
	})

	SweepCells = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "solarsite",
		Subsystem: "sweep",
		Name:      "cells",
		Help:      "Lattice size per sweep",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 7),
	})

	// Analysis metrics
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solarsite",
		Subsystem: "analysis",
		Name:      "total",
		Help:      "Finished analyses by outcome",
	}, []string{"outcome"})

	TierPoints = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solarsite",
		Subsystem: "analysis",
		Name:      "tier_points_total",
		Help:      "Classified lattice points by feasibility tier",
	}, []string{"tier"})

	// Upstream metrics
	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "solarsite",
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Latency of calls to external services",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
	}, []string{"upstream"})

	UpstreamErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solarsite",
		Subsystem: "upstream",
		Name:      "errors_total",
		Help:      "Failed calls to external services",
	}, []string{"upstream"})

	UpstreamRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solarsite",
		Subsystem: "upstream",
		Name:      "retries_total",
		Help:      "Retried calls to external services",
	}, []string{"upstream"})

	GazetteerPlaces = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "solarsite",
		Subsystem: "gazetteer",
		Name:      "places",
		Help:      "Number of named places loaded into the gazetteer",
	})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "solarsite",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Analysis events published by result (ok, error)",
	}, []string{"result"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "solarsite",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// ObserveUpstream records the latency and outcome of one upstream call.
func ObserveUpstream(upstream string, start time.Time, err error) {
	UpstreamDuration.WithLabelValues(upstream).Observe(time.Since(start).Seconds())
	if err != nil {
		UpstreamErrors.WithLabelValues(upstream).Inc()
	}
}
