package main

import (
	"context"
	"log/slog"
	"time"

	"etl/internal/config"
	"etl/internal/storage"

	"github.com/spf13/cobra"
)

func newCheckDBCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check-db",
		Short: "Open a session with the configured store and run a trivial query.",
		Long: `check-db connects with the resolved connection string (--dsn, ETL_DSN or
DATABASE_URL) and runs SELECT 1. It uses --load to choose the backend and
defaults to postgres when --load is none.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			kind := cfg.Load
			if kind == config.LoadNone {
				kind = config.LoadPostgres
			}
			if cfg.ConnString() == "" {
				return config.ErrMissingDSN
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.DBTimeout)
			defer cancel()
			start := time.Now()
			err := storage.WithSession(ctx, storage.Config{Kind: kind, DSN: cfg.ConnString()}, func(db storage.DB) error {
				return storage.Ping(ctx, db)
			})
			if err != nil {
				return err
			}
			a.logger.Info("database connection ok",
				slog.String("kind", kind),
				slog.Duration("elapsed", time.Since(start)))
			return nil
		},
	}
}
