package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"etl/internal/config"
	"etl/internal/metrics"
	"etl/internal/metrics/datadog"
	"etl/internal/metrics/prompush"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg    *config.Config
	runID  string
	logger *slog.Logger
	stderr io.Writer
	flush  func()
}

// run executes the CLI with args and returns the process exit status.
func run(ctx context.Context, args []string) int {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	a := &app{cfg: cfg, runID: uuid.NewString(), stderr: os.Stderr}
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(ctx)
	if a.flush != nil {
		a.flush()
	}
	if err != nil {
		if a.logger != nil {
			a.logger.Error("etl failed", slog.Any("err", err))
		} else {
			fmt.Fprintf(os.Stderr, "etl failed: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	cfg := a.cfg

	cmd := &cobra.Command{
		Use:   "etl [flags] [input]",
		Short: "Clean a yearly restaurant spreadsheet and load locations and trends.",
		Long: `etl reads the first sheet of a YEnn spreadsheet (the two digits give the
reporting year), drops empty, keyless and duplicate rows, splits the rest into
location and trend records and writes <stem>_<year>_locations.csv and
<stem>_<year>_trends.csv. With --load postgres|sqlite both record sets are also
upserted, locations first, and trends only when every store they reference
exists.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			a.logger = newLogger(a.stderr, cfg.LogLevel, cfg.LogFormat).With(slog.String("run_id", a.runID))
			slog.SetDefault(a.logger)

			flush, err := setupMetrics(cfg, a.runID, a.logger)
			if err != nil {
				return err
			}
			a.flush = flush
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg.Input = args[0]
			}
			if strings.TrimSpace(cfg.Input) == "" {
				return errors.New("an input file is required (--in or positional argument)")
			}
			_, err := runPipeline(cmd.Context(), cfg, a.logger)
			return err
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	f.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")
	f.StringVar(&cfg.Load, "load", cfg.Load, "load mode: none (files only), postgres or sqlite")
	f.StringVar(&cfg.DSN, "dsn", cfg.DSN, "connection string (overrides ETL_DSN and DATABASE_URL)")
	f.DurationVar(&cfg.DBTimeout, "db-timeout", cfg.DBTimeout, "deadline for the database phase")
	f.StringVar(&cfg.MetricsBackend, "metrics-backend", cfg.MetricsBackend, "metrics backend: none, pushgateway or datadog")
	f.StringVar(&cfg.PushgatewayURL, "pushgateway-url", cfg.PushgatewayURL, "Pushgateway base URL")
	f.StringVar(&cfg.DogstatsdAddr, "dogstatsd-addr", cfg.DogstatsdAddr, "DogStatsD address")
	f.StringVar(&cfg.Job, "job", cfg.Job, "job name used for metrics")

	lf := cmd.Flags()
	lf.StringVarP(&cfg.Input, "in", "i", cfg.Input, "input spreadsheet (.xlsx, .xlsm or .csv), name must start with YEnn")
	lf.StringVarP(&cfg.OutputDir, "out", "o", cfg.OutputDir, "output directory for the CSV files")
	lf.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "rows per INSERT statement")
	lf.BoolVar(&cfg.CreateTables, "create-tables", cfg.CreateTables, "create the tables if they do not exist")
	lf.StringVar(&cfg.SkippedDir, "skipped-dir", cfg.SkippedDir, "write rows dropped by cleaning to <dir>/<stem>_<year>_skipped.csv")

	cmd.AddCommand(newCheckDBCmd(a))
	return cmd
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// setupMetrics installs the configured backend and returns its flush func.
func setupMetrics(cfg *config.Config, runID string, logger *slog.Logger) (func(), error) {
	var b metrics.Backend
	switch cfg.MetricsBackend {
	case config.MetricsPushgateway:
		pb, err := prompush.NewBackend(cfg.Job, cfg.PushgatewayURL, map[string]string{"run_id": runID})
		if err != nil {
			return nil, err
		}
		b = pb
	case config.MetricsDatadog:
		db, err := datadog.NewBackend(datadog.Config{
			Addr:       cfg.DogstatsdAddr,
			Namespace:  "restaurant.",
			GlobalTags: []string{"job:" + cfg.Job},
		})
		if err != nil {
			return nil, err
		}
		b = db
	default:
		logger.Debug("metrics disabled")
		return func() {}, nil
	}

	metrics.SetBackend(b)
	logger.Info("metrics enabled", slog.String("backend", cfg.MetricsBackend))
	return func() {
		if err := metrics.Flush(); err != nil {
			logger.Warn("metrics flush failed", slog.Any("err", err))
		}
	}, nil
}
