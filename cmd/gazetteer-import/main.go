// Command gazetteer-import bulk-loads the city table into Postgres,
// replacing whatever the places table held before.
//
//	gazetteer-import [-member cities.csv] <path-or-url>
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samirrijal/solarsite/internal/adapters/postgres"
	"github.com/samirrijal/solarsite/internal/pkg/config"
	"github.com/samirrijal/solarsite/internal/pkg/logging"
)

func main() {
	member := flag.String("member", "", "CSV file inside a zip archive (default: first .csv)")
	flag.Parse()

	cfg, err := config.Load("solarsite-gazetteer-import")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	src := cfg.Gazetteer.Path
	if flag.NArg() > 0 {
		src = flag.Arg(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	start := time.Now()
	slog.Info("reading gazetteer", "source", src)

	body, err := readSource(ctx, &http.Client{Timeout: 5 * time.Minute}, src)
	if err != nil {
		log.Fatalf("read %s: %v", src, err)
	}
	rc, err := openCSV(body, src, *member)
	if err != nil {
		log.Fatalf("open csv: %v", err)
	}
	defer rc.Close()

	n, err := importPlaces(ctx, postgres.NewPlaceRepo(db.Pool), rc)
	if err != nil {
		log.Fatalf("import: %v", err)
	}
	slog.Info("import complete", "rows", n, "elapsed", time.Since(start).String())
}
