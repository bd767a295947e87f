package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/solarsite/internal/adapters/gazetteer"
	"github.com/samirrijal/solarsite/internal/adapters/http"
	natsadapter "github.com/samirrijal/solarsite/internal/adapters/nats"
	"github.com/samirrijal/solarsite/internal/adapters/nominatim"
	"github.com/samirrijal/solarsite/internal/adapters/postgres"
	"github.com/samirrijal/solarsite/internal/adapters/pvgis"
	"github.com/samirrijal/solarsite/internal/adapters/valkey"
	"github.com/samirrijal/solarsite/internal/core/ports"
	"github.com/samirrijal/solarsite/internal/core/usecases"
	"github.com/samirrijal/solarsite/internal/pkg/config"
	"github.com/samirrijal/solarsite/internal/pkg/logging"
	"github.com/samirrijal/solarsite/internal/pkg/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load("solarsite-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Gazetteer
	var db *postgres.DB
	var source ports.PlaceSource
	switch cfg.Gazetteer.Source {
	case "postgres":
		db, err = postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		source = postgres.NewPlaceRepo(db.Pool)
	default:
		source = gazetteer.NewCSVSource(cfg.Gazetteer.Path)
	}

	gaz, err := usecases.LoadGazetteer(ctx, source)
	if err != nil {
		log.Fatalf("gazetteer: %v", err)
	}
	slog.Info("gazetteer loaded", "source", cfg.Gazetteer.Source, "entries", gaz.Len())

	// Rate limiter storage
	var limiterStore *valkey.Storage
	if cfg.Valkey.Addr != "" {
		limiterStore, err = valkey.New(cfg.Valkey.Addr, "")
		if err != nil {
			slog.Warn("valkey unavailable, using in-memory limiter", "error", err)
		} else {
			defer limiterStore.Close()
		}
	}

	// NATS
	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, analysis events disabled", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
		natsConn = nil
	} else {
		defer natsConn.Close()
	}

	// Upstreams
	irradiance := pvgis.New(
		pvgis.WithBaseURL(cfg.PVGIS.BaseURL),
		pvgis.WithHTTPClient(&nethttp.Client{Timeout: time.Duration(cfg.PVGIS.Timeout) * time.Second}),
		pvgis.WithRetry(cfg.PVGIS.MaxAttempts, time.Duration(cfg.PVGIS.InitialBackoffMs)*time.Millisecond),
	)
	geocoder := nominatim.New(
		nominatim.WithBaseURL(cfg.Nominatim.BaseURL),
		nominatim.WithUserAgent(cfg.Nominatim.UserAgent),
		nominatim.WithHTTPClient(&nethttp.Client{Timeout: time.Duration(cfg.Nominatim.Timeout) * time.Second}),
		nominatim.WithRateLimit(cfg.Nominatim.RatePerSecond),
	)

	// Use cases
	sampler := usecases.NewGridSampler(irradiance,
		usecases.WithConcurrency(cfg.Sweep.Concurrency),
		usecases.WithSweepTimeout(time.Duration(cfg.Sweep.Timeout)*time.Second),
		usecases.WithMaxCells(cfg.Sweep.MaxCells),
	)
	analysisSvc := usecases.NewAnalysisService(gaz, sampler, geocoder, publisher)

	deps := &http.Dependencies{
		Analysis:       analysisSvc,
		Gazetteer:      gaz,
		Defaults:       cfg.Defaults,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
		NATS:           natsConn,
		DB:             db,
		Valkey:         limiterStore,
		Version:        version,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024,
		AppName:      "Solarsite API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "version", version)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Analyses can run close to the request timeout; give them a little more.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), deps.RequestTimeout+5*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
