package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ETL_INPUT", "ETL_OUTPUT_DIR", "ETL_LOAD", "ETL_LOG_LEVEL", "ETL_LOG_FORMAT",
		"ETL_DSN", "DSN", "ETL_DATABASE_URL", "DATABASE_URL", "ETL_BATCH_SIZE",
		"ETL_DB_TIMEOUT", "ETL_METRICS_BACKEND", "ETL_PUSHGATEWAY_URL",
		"ETL_DOGSTATSD_ADDR", "ETL_JOB", "ETL_CREATE_TABLES", "ETL_SKIPPED_DIR",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "output", c.OutputDir)
	assert.Equal(t, LoadNone, c.Load)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, 500, c.BatchSize)
	assert.Equal(t, 5*time.Minute, c.DBTimeout)
	assert.Equal(t, "restaurant-etl", c.Job)
	require.NoError(t, c.Validate())
}

func TestLoad_EnvAndDotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ETL_LOAD", "POSTGRES")
	t.Setenv("ETL_BATCH_SIZE", "50")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("DATABASE_URL=postgres://u@h/db\nETL_BATCH_SIZE=999\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("DATABASE_URL") })

	c, err := Load(envFile)
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, LoadPostgres, c.Load)
	assert.Equal(t, 50, c.BatchSize, "process env wins over .env")
	assert.Equal(t, "postgres://u@h/db", c.ConnString())
}

func TestLoad_MissingEnvFileIsFine(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	require.NoError(t, err)
}

func TestLoad_IgnoresUnprefixedVariables(t *testing.T) {
	clearEnv(t)
	for k, v := range map[string]string{
		"LOAD": "postgres", "JOB": "someone-elses-job", "INPUT": "other.xlsx",
		"LOG_LEVEL": "debug", "BATCH_SIZE": "7", "OUTPUT_DIR": "/elsewhere",
	} {
		t.Setenv(k, v)
	}

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, LoadNone, c.Load)
	assert.Equal(t, "restaurant-etl", c.Job)
	assert.Empty(t, c.Input)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, 500, c.BatchSize)
	assert.Equal(t, "output", c.OutputDir)
}

func TestLoad_PrefixedNames(t *testing.T) {
	clearEnv(t)
	t.Setenv("ETL_DB_TIMEOUT", "30s")
	t.Setenv("ETL_DOGSTATSD_ADDR", "statsd:8125")
	t.Setenv("ETL_PUSHGATEWAY_URL", "http://gw:9091")
	t.Setenv("ETL_CREATE_TABLES", "true")
	t.Setenv("ETL_SKIPPED_DIR", "skipped")
	t.Setenv("ETL_JOB", "nightly")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, c.DBTimeout)
	assert.Equal(t, "statsd:8125", c.DogstatsdAddr)
	assert.Equal(t, "http://gw:9091", c.PushgatewayURL)
	assert.True(t, c.CreateTables)
	assert.Equal(t, "skipped", c.SkippedDir)
	assert.Equal(t, "nightly", c.Job)
}

func TestLoad_BadValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("ETL_BATCH_SIZE", "many")
	_, err := Load("")
	require.Error(t, err)
}

func TestConnStringPrecedence(t *testing.T) {
	c := &Config{DSN: " flag ", DatabaseURL: "url"}
	assert.Equal(t, "flag", c.ConnString())
	c.DSN = ""
	assert.Equal(t, "url", c.ConnString())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			OutputDir: "out", Load: "none", LogLevel: "info", LogFormat: "text",
			BatchSize: 10, DBTimeout: time.Second, MetricsBackend: "none", Job: "etl",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"bad load", func(c *Config) { c.Load = "mysql" }, "Load must be one of"},
		{"zero batch", func(c *Config) { c.BatchSize = 0 }, "BatchSize must be greater than 0"},
		{"db without dsn", func(c *Config) { c.Load = "sqlite" }, "connection string"},
		{"db with dsn", func(c *Config) { c.Load = "SQLite"; c.DSN = "etl.db" }, ""},
		{"pushgateway without url", func(c *Config) { c.MetricsBackend = "pushgateway" }, "PushgatewayURL is required"},
		{"bad level", func(c *Config) { c.LogLevel = "trace" }, "LogLevel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	c := base()
	c.Load = "sqlite"
	assert.ErrorIs(t, c.Validate(), ErrMissingDSN)
}
