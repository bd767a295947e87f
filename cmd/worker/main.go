package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/solarsite/internal/adapters/gazetteer"
	natsadapter "github.com/samirrijal/solarsite/internal/adapters/nats"
	"github.com/samirrijal/solarsite/internal/adapters/nominatim"
	"github.com/samirrijal/solarsite/internal/adapters/postgres"
	"github.com/samirrijal/solarsite/internal/adapters/pvgis"
	"github.com/samirrijal/solarsite/internal/core/ports"
	"github.com/samirrijal/solarsite/internal/core/usecases"
	"github.com/samirrijal/solarsite/internal/pkg/config"
	"github.com/samirrijal/solarsite/internal/pkg/logging"
	"github.com/samirrijal/solarsite/internal/pkg/telemetry"
	"github.com/samirrijal/solarsite/internal/workflows"
)

func main() {
	cfg, err := config.Load("solarsite-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	var source ports.PlaceSource = gazetteer.NewCSVSource(cfg.Gazetteer.Path)
	if cfg.Gazetteer.Source == "postgres" {
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		source = postgres.NewPlaceRepo(db.Pool)
	}
	gaz, err := usecases.LoadGazetteer(ctx, source)
	if err != nil {
		log.Fatalf("gazetteer: %v", err)
	}

	var publisher ports.EventPublisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, analysis events disabled", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	irradiance := pvgis.New(
		pvgis.WithBaseURL(cfg.PVGIS.BaseURL),
		pvgis.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.PVGIS.Timeout) * time.Second}),
		pvgis.WithRetry(cfg.PVGIS.MaxAttempts, time.Duration(cfg.PVGIS.InitialBackoffMs)*time.Millisecond),
	)
	geocoder := nominatim.New(
		nominatim.WithBaseURL(cfg.Nominatim.BaseURL),
		nominatim.WithUserAgent(cfg.Nominatim.UserAgent),
		nominatim.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Nominatim.Timeout) * time.Second}),
		nominatim.WithRateLimit(cfg.Nominatim.RatePerSecond),
	)
	sampler := usecases.NewGridSampler(irradiance,
		usecases.WithConcurrency(cfg.Sweep.Concurrency),
		usecases.WithSweepTimeout(time.Duration(cfg.Sweep.Timeout)*time.Second),
		usecases.WithMaxCells(cfg.Sweep.MaxCells),
	)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    slog.Default(),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.FeasibilityBatchWorkflow)
	w.RegisterActivity(&workflows.AnalysisActivities{
		Analysis: usecases.NewAnalysisService(gaz, sampler, geocoder, publisher),
	})

	slog.Info("feasibility worker started", "task_queue", cfg.Temporal.TaskQueue, "gazetteer_entries", gaz.Len())
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
