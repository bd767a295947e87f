package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/solarsite/internal/pkg/metrics"
)

const (
	fastTimeout = 5 * time.Second

	// An analysis makes one upstream call per cell, so it gets a much
	// smaller budget than the cheap lookups.
	analyzePerMinute = 10
	generalPerMinute = 120
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	app.Use(newLimiter(deps, "all", generalPerMinute))

	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())
	app.Use(DeprecationMiddleware(legacyRoutes))

	// Health & readiness, no timeout
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	analyzeLimit := newLimiter(deps, "analyze", analyzePerMinute)
	analyzeTimeout := deps.requestTimeout()

	v1 := app.Group("/v1")
	v1.Post("/analyze", analyzeLimit, timeout.NewWithContext(AnalyzeHandler(deps), analyzeTimeout))
	v1.Get("/places", timeout.NewWithContext(SearchPlacesHandler(deps), fastTimeout))
	v1.Get("/places/resolve", timeout.NewWithContext(ResolvePlaceHandler(deps), fastTimeout))
	v1.Get("/economics", timeout.NewWithContext(EconomicsHandler(deps), fastTimeout))

	app.Post("/analyze", analyzeLimit, timeout.NewWithContext(LegacyAnalyzeHandler(deps), analyzeTimeout))

	app.Post("/graphql", analyzeGate(analyzeLimit), timeout.NewWithContext(GraphQLHandler(deps), analyzeTimeout))

	SetupDocs(app, "")

	if deps.NATS != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
	}
}

// newLimiter builds a per-IP limiter. Counters live in Valkey when it is
// configured so every API replica enforces the same budget.
func newLimiter(deps *Dependencies, scope string, perMinute int) fiber.Handler {
	cfg := limiter.Config{
		Max:        perMinute,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "limiter:" + scope + ":" + c.IP()
		},
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return p == "/metrics" || p == "/v1/health" || p == "/v1/ready"
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}
	if deps.Valkey != nil {
		cfg.Storage = deps.Valkey
	}
	return limiter.New(cfg)
}
