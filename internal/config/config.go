package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	SourcePostgres = "postgres"
	SourceHTTP     = "http"
	SourceFile     = "file"
)

// Config is shared by the extract, train and api commands; each reads what it needs.
type Config struct {
	Port        string `env:"PORT" envDefault:"5001"`
	Environment string `env:"ENVIRONMENT" envDefault:"local"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	ArtifactPath    string `env:"ARTIFACT_PATH" envDefault:"conversion_model.json"`
	DatasetPath     string `env:"DATASET_PATH" envDefault:"training_data.csv"`
	DatasetXLSXPath string `env:"DATASET_XLSX_PATH"`

	SourceKind       string        `env:"SOURCE_KIND" envDefault:"postgres"`
	DatabaseURL      string        `env:"DATABASE_URL"`
	SourceURL        string        `env:"SOURCE_URL"`
	AssessmentsFile  string        `env:"ASSESSMENTS_FILE" envDefault:"assessments.json"`
	AppointmentsFile string        `env:"APPOINTMENTS_FILE" envDefault:"appointments.json"`
	SourceTimeout    time.Duration `env:"SOURCE_TIMEOUT" envDefault:"30s"`

	ConversionWindow time.Duration `env:"CONVERSION_WINDOW" envDefault:"2160h"`
	TestFraction     float64       `env:"TEST_FRACTION" envDefault:"0.2"`
	TrainSeed        uint64        `env:"TRAIN_SEED" envDefault:"42"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"10m"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

// Load reads a .env file when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadConfig()
}

// LoadConfig parses and validates the environment.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	switch c.SourceKind {
	case SourcePostgres, SourceHTTP, SourceFile:
	default:
		errs = append(errs, fmt.Errorf("SOURCE_KIND %q: want postgres, http or file", c.SourceKind))
	}
	if c.ConversionWindow <= 0 {
		errs = append(errs, fmt.Errorf("CONVERSION_WINDOW must be positive, got %s", c.ConversionWindow))
	}
	if c.TestFraction <= 0 || c.TestFraction >= 1 {
		errs = append(errs, fmt.Errorf("TEST_FRACTION must be in (0,1), got %v", c.TestFraction))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL must not be negative"))
	}
	return errors.Join(errs...)
}

// IsLocal reports a developer environment.
func (c *Config) IsLocal() bool {
	switch strings.ToLower(c.Environment) {
	case "", "local", "development", "dev":
		return true
	}
	return false
}

// Origins is the CORS allow list; local environments allow any origin when none is set.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range c.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 && c.IsLocal() {
		return []string{"*"}
	}
	return out
}
