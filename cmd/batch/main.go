// Command batch submits a file of sites to the feasibility worker and
// follows analysis events.
//
//	batch submit [-concurrency n] [-nowait] sites.json
//	batch watch [-replay]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	natsadapter "github.com/samirrijal/solarsite/internal/adapters/nats"
	"github.com/samirrijal/solarsite/internal/core/domain"
	"github.com/samirrijal/solarsite/internal/pkg/config"
	"github.com/samirrijal/solarsite/internal/pkg/logging"
	"github.com/samirrijal/solarsite/internal/workflows"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: batch submit [-concurrency n] [-nowait] sites.json")
	fmt.Fprintln(os.Stderr, "       batch watch [-replay]")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.Load("solarsite-batch")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	// Results go to stdout; keep logs on stderr.
	slog.SetDefault(logging.New(os.Stderr, cfg.Log.Level, "text"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "submit":
		err = submit(ctx, cfg, os.Args[2:])
	case "watch":
		err = watch(ctx, cfg, os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func submit(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	concurrency := fs.Int("concurrency", workflows.DefaultBatchConcurrency, "sites analyzed at once")
	noWait := fs.Bool("nowait", false, "return after starting the workflow")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		usage()
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	sites, err := parseSites(f, cfg.Defaults)
	if err != nil {
		return err
	}

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    slog.Default(),
	})
	if err != nil {
		return fmt.Errorf("temporal client: %w", err)
	}
	defer c.Close()

	batchID := uuid.NewString()
	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        "feasibility-batch-" + batchID,
		TaskQueue: cfg.Temporal.TaskQueue,
	}, workflows.FeasibilityBatchWorkflow, workflows.BatchInput{
		BatchID:     batchID,
		Sites:       sites,
		Concurrency: *concurrency,
	})
	if err != nil {
		return fmt.Errorf("start workflow: %w", err)
	}
	slog.Info("batch submitted", "batch_id", batchID, "workflow_id", run.GetID(), "run_id", run.GetRunID(), "sites", len(sites))

	if *noWait {
		return nil
	}

	var result workflows.BatchResult
	if err := run.Get(ctx, &result); err != nil {
		return fmt.Errorf("batch %s: %w", batchID, err)
	}
	slog.Info("batch finished", "succeeded", result.Succeeded, "failed", result.Failed)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func watch(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	replay := fs.Bool("replay", false, "deliver retained events first")
	_ = fs.Parse(args)

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		return err
	}
	defer sub.Close()

	enc := json.NewEncoder(os.Stdout)
	err = sub.SubscribeAnalysisEvents(ctx, *replay, func(_ context.Context, event *domain.AnalysisEvent) error {
		return enc.Encode(event)
	})
	if err != nil {
		return err
	}
	slog.Info("watching analysis events", "subjects", natsadapter.AnalysisSubjects)

	<-ctx.Done()
	return nil
}
