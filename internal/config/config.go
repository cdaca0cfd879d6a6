// Package config holds the run configuration of the ETL command.
//
// Values come from the environment (prefix ETL_, optionally seeded from a
// .env file) and are then overridden by command-line flags. Validate checks
// the merged result before any input is read.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix.
const Prefix = "ETL"

// Load modes.
const (
	LoadNone     = "none"
	LoadPostgres = "postgres"
	LoadSQLite   = "sqlite"
)

// Metrics backends.
const (
	MetricsNone        = "none"
	MetricsPushgateway = "pushgateway"
	MetricsDatadog     = "datadog"
)

// ErrMissingDSN is returned when a database load has no connection string.
var ErrMissingDSN = errors.New("database load requires a connection string (--dsn, ETL_DSN or DATABASE_URL)")

// Config is the merged run configuration.
type Config struct {
	Input     string `split_words:"true"`
	OutputDir string `split_words:"true" default:"output" validate:"required"`
	Load      string `default:"none" validate:"oneof=none postgres sqlite"`

	LogLevel  string `split_words:"true" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `split_words:"true" default:"text" validate:"oneof=text json"`

	// DSN is ETL_DSN or --dsn. DatabaseURL is ETL_DATABASE_URL, falling back
	// to the conventional unprefixed DATABASE_URL. No other field reads an
	// unprefixed variable.
	DSN          string
	DatabaseURL  string        `envconfig:"DATABASE_URL"`
	BatchSize    int           `split_words:"true" default:"500" validate:"gt=0"`
	DBTimeout    time.Duration `split_words:"true" default:"5m" validate:"gt=0"`
	CreateTables bool          `split_words:"true" default:"false"`

	SkippedDir string `split_words:"true"`

	MetricsBackend string `split_words:"true" default:"none" validate:"oneof=none pushgateway datadog"`
	PushgatewayURL string `split_words:"true" validate:"required_if=MetricsBackend pushgateway"`
	DogstatsdAddr  string `split_words:"true" default:"127.0.0.1:8125"`
	Job            string `default:"restaurant-etl" validate:"required"`
}

// Load reads envFile (missing is fine; empty skips it) into the process
// environment without overriding existing variables, then decodes ETL_*
// variables into a Config.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}
	var c Config
	if err := envconfig.Process(Prefix, &c); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}
	return &c, nil
}

// ConnString resolves the connection string: DSN (flag or ETL_DSN) first,
// then DATABASE_URL.
func (c *Config) ConnString() string {
	if s := strings.TrimSpace(c.DSN); s != "" {
		return s
	}
	return strings.TrimSpace(c.DatabaseURL)
}

// UsesDatabase reports whether the run loads into a store.
func (c *Config) UsesDatabase() bool { return c.Load != LoadNone }

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate normalizes enum fields to lower case and checks the result.
func (c *Config) Validate() error {
	c.Load = strings.ToLower(strings.TrimSpace(c.Load))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.MetricsBackend = strings.ToLower(strings.TrimSpace(c.MetricsBackend))

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, formatFieldError(fe))
			}
			return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config: %w", err)
	}
	if c.UsesDatabase() && c.ConnString() == "" {
		return ErrMissingDSN
	}
	return nil
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
