package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Gazetteer GazetteerConfig `mapstructure:"gazetteer"`
	PVGIS     PVGISConfig     `mapstructure:"pvgis"`
	Nominatim NominatimConfig `mapstructure:"nominatim"`
	Sweep     SweepConfig     `mapstructure:"sweep"`
	Defaults  DefaultsConfig  `mapstructure:"defaults"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	ReadTimeout    int `mapstructure:"read_timeout"`
	WriteTimeout   int `mapstructure:"write_timeout"`
	RequestTimeout int `mapstructure:"request_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	OTLPAddr    string `mapstructure:"otlp_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// GazetteerConfig selects where the city table is loaded from.
// Source is "csv" (Path is read) or "postgres" (the places table).
type GazetteerConfig struct {
	Source string `mapstructure:"source"`
	Path   string `mapstructure:"path"`
}

type PVGISConfig struct {
	BaseURL          string `mapstructure:"base_url"`
	Timeout          int    `mapstructure:"timeout"`
	MaxAttempts      int    `mapstructure:"max_attempts"`
	InitialBackoffMs int    `mapstructure:"initial_backoff_ms"`
}

type NominatimConfig struct {
	BaseURL       string  `mapstructure:"base_url"`
	UserAgent     string  `mapstructure:"user_agent"`
	Timeout       int     `mapstructure:"timeout"`
	RatePerSecond float64 `mapstructure:"rate_per_second"`
}

// SweepConfig bounds the grid sweep. Timeout is in seconds and covers
// the whole sweep, not a single cell.
type SweepConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	Timeout     int `mapstructure:"timeout"`
	MaxCells    int `mapstructure:"max_cells"`
}

// DefaultsConfig fills analysis fields the caller leaves out.
type DefaultsConfig struct {
	Delta      float64 `mapstructure:"delta"`
	Step       float64 `mapstructure:"step"`
	Price      float64 `mapstructure:"price"`
	CapacityMW float64 `mapstructure:"capacity_mw"`
	Year       int     `mapstructure:"year"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 120)
	v.SetDefault("server.request_timeout", 110)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "solarsite")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "solarsite")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "feasibility-queue")
	v.SetDefault("gazetteer.source", "csv")
	v.SetDefault("gazetteer.path", "data/cities15000.csv")
	v.SetDefault("pvgis.base_url", "https://re.jrc.ec.europa.eu/api/MRcalc")
	v.SetDefault("pvgis.timeout", 20)
	v.SetDefault("pvgis.max_attempts", 3)
	v.SetDefault("pvgis.initial_backoff_ms", 250)
	v.SetDefault("nominatim.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("nominatim.user_agent", "solarsite/1.0")
	v.SetDefault("nominatim.timeout", 10)
	v.SetDefault("nominatim.rate_per_second", 1.0)
	v.SetDefault("sweep.concurrency", 8)
	v.SetDefault("sweep.timeout", 90)
	v.SetDefault("sweep.max_cells", 2500)
	v.SetDefault("defaults.delta", 0.3)
	v.SetDefault("defaults.step", 0.05)
	v.SetDefault("defaults.price", 7.5)
	v.SetDefault("defaults.capacity_mw", 5.0)
	v.SetDefault("defaults.year", 2023)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: SOLARSITE_SWEEP_CONCURRENCY → sweep.concurrency
	v.SetEnvPrefix("SOLARSITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "server.request_timeout must be positive")
	}

	switch c.Gazetteer.Source {
	case "csv":
		if c.Gazetteer.Path == "" {
			errs = append(errs, "gazetteer.path is required when gazetteer.source is csv")
		}
	case "postgres":
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("gazetteer.source must be csv or postgres, got %q", c.Gazetteer.Source))
	}

	if c.PVGIS.BaseURL == "" {
		errs = append(errs, "pvgis.base_url is required")
	}
	if c.PVGIS.Timeout <= 0 {
		errs = append(errs, "pvgis.timeout must be positive")
	}
	if c.PVGIS.MaxAttempts < 1 {
		errs = append(errs, "pvgis.max_attempts must be at least 1")
	}
	if c.Nominatim.BaseURL == "" {
		errs = append(errs, "nominatim.base_url is required")
	}
	if c.Nominatim.UserAgent == "" {
		errs = append(errs, "nominatim.user_agent is required")
	}
	if c.Nominatim.RatePerSecond <= 0 {
		errs = append(errs, "nominatim.rate_per_second must be positive")
	}
	if c.Sweep.Concurrency < 1 {
		errs = append(errs, "sweep.concurrency must be at least 1")
	}
	if c.Sweep.Timeout <= 0 {
		errs = append(errs, "sweep.timeout must be positive")
	}
	if c.Sweep.MaxCells < 1 {
		errs = append(errs, "sweep.max_cells must be at least 1")
	}
	if c.Defaults.Delta <= 0 || c.Defaults.Step <= 0 {
		errs = append(errs, "defaults.delta and defaults.step must be positive")
	}
	if c.Temporal.TaskQueue == "" {
		errs = append(errs, "temporal.task_queue is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
