package http

import (
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/solarsite/internal/adapters/postgres"
	"github.com/samirrijal/solarsite/internal/adapters/valkey"
	"github.com/samirrijal/solarsite/internal/core/usecases"
	"github.com/samirrijal/solarsite/internal/pkg/config"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Analysis  *usecases.AnalysisService
	Gazetteer *usecases.Gazetteer
	Defaults  config.DefaultsConfig
	// RequestTimeout bounds a single analysis request; zero means 110s.
	RequestTimeout time.Duration
	NATS           *nats.Conn
	DB             *postgres.DB
	Valkey         *valkey.Storage
	Version        string
}

func (d *Dependencies) requestTimeout() time.Duration {
	if d.RequestTimeout > 0 {
		return d.RequestTimeout
	}
	return 110 * time.Second
}
