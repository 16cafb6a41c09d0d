package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"

	"github.com/trackar/server/internal/attendance"
)

type Config struct {
	HTTPAddr string `env:"TRACKAR_HTTP_ADDR" envDefault:":8080"`
	GRPCAddr string `env:"TRACKAR_GRPC_ADDR" envDefault:":9090"`

	Env   string `env:"TRACKAR_ENV" envDefault:"dev"`      // "dev" | "prod"
	Store string `env:"TRACKAR_STORE" envDefault:"sqlite"` // "memory" | "sqlite"

	// DB
	DBPath  string `env:"TRACKAR_DB_PATH" envDefault:"./data/trackar.db"`
	SeedDev bool   `env:"TRACKAR_SEED_DEV" envDefault:"false"`

	// Where the attendance views read events from: "local" (own event log)
	// or "remote" (Trackar REST API).
	Source     string        `env:"TRACKAR_SOURCE" envDefault:"local"`
	APIURL     string        `env:"TRACKAR_API_URL"`
	APIPhone   string        `env:"TRACKAR_API_PHONE"`
	APIPIN     string        `env:"TRACKAR_API_PIN"`
	APITimeout time.Duration `env:"TRACKAR_API_TIMEOUT" envDefault:"10s"`

	TimeZone           string `env:"TRACKAR_TIMEZONE" envDefault:"UTC"`
	HistogramFirstHour int    `env:"TRACKAR_HISTOGRAM_FIRST_HOUR" envDefault:"8"`
	HistogramLastHour  int    `env:"TRACKAR_HISTOGRAM_LAST_HOUR" envDefault:"19"`

	// Event retention
	EventRetentionDays int `env:"TRACKAR_EVENT_RETENTION_DAYS" envDefault:"90"` // 0 = keep forever
	PruneIntervalHours int `env:"TRACKAR_PRUNE_INTERVAL_HOURS" envDefault:"6"`

	OTelEndpoint string `env:"TRACKAR_OTEL_ENDPOINT"`
	Language     string `env:"TRACKAR_LANGUAGE" envDefault:"en"`
}

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"

	SourceLocal  = "local"
	SourceRemote = "remote"
)

// LoadDotEnv loads KEY=VALUE files into the process environment without
// overriding variables that are already set.  Missing files are skipped.
// With no paths it reads ./.env.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// FromEnv parses the environment.  Unparseable numbers and durations are an
// error; unknown enum values and out-of-range numbers fall back to their
// defaults.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Env = oneOf(cfg.Env, "dev", "dev", "prod")
	cfg.Store = oneOf(cfg.Store, StoreSQLite, StoreMemory, StoreSQLite)
	cfg.Source = oneOf(cfg.Source, SourceLocal, SourceLocal, SourceRemote)

	if cfg.EventRetentionDays < 0 {
		cfg.EventRetentionDays = 90
	}
	if cfg.PruneIntervalHours <= 0 {
		cfg.PruneIntervalHours = 6
	}
	if cfg.APITimeout <= 0 {
		cfg.APITimeout = 10 * time.Second
	}
	if (attendance.HourWindow{First: cfg.HistogramFirstHour, Last: cfg.HistogramLastHour}).Validate() != nil {
		cfg.HistogramFirstHour = attendance.DefaultHourWindow.First
		cfg.HistogramLastHour = attendance.DefaultHourWindow.Last
	}

	if strings.TrimSpace(cfg.TimeZone) == "" {
		cfg.TimeZone = "UTC"
	}
	if _, err := time.LoadLocation(cfg.TimeZone); err != nil {
		return Config{}, fmt.Errorf("TRACKAR_TIMEZONE: %w", err)
	}

	if cfg.Source == SourceRemote && strings.TrimSpace(cfg.APIURL) == "" {
		return Config{}, errors.New("TRACKAR_API_URL is required when TRACKAR_SOURCE=remote")
	}

	return cfg, nil
}

// Location returns the zone attendance days are derived in.  FromEnv has
// already validated it.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Config) HourWindow() attendance.HourWindow {
	return attendance.HourWindow{First: c.HistogramFirstHour, Last: c.HistogramLastHour}
}

// LanguageTag parses Language, falling back to English.
func (c Config) LanguageTag() language.Tag {
	tag, err := language.Parse(c.Language)
	if err != nil {
		return language.English
	}
	return tag
}

func oneOf(v, def string, allowed ...string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	// fail-soft: treat unknown as default
	return def
}
