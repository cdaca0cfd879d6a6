package main

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"etl/internal/cleaning"
	"etl/internal/config"
	"etl/internal/datasource"
	"etl/internal/datasource/file"
	"etl/internal/mapping"
	"etl/internal/metrics"
	"etl/internal/parser"
	"etl/internal/skiplog"
	"etl/internal/split"
	"etl/internal/storage"
	"etl/internal/storage/csvfile"
	"etl/pkg/records"
)

// summary is what one run produced.
type summary struct {
	Year           int
	Read           int
	Cleaned        int
	Locations      int
	Trends         int
	Files          csvfile.Paths
	Skipped        string
	SkippedReasons map[string]int
	Load           *storage.Result
}

// runPipeline executes one run: year, read, clean, split, map and coerce,
// validate, export, and load when a store is configured.
func runPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*summary, error) {
	start := time.Now()
	job := cfg.Job

	year, err := datasource.YearFromFilename(cfg.Input)
	if err != nil {
		return nil, err
	}
	stem := datasource.Stem(cfg.Input)
	logger = logger.With(slog.String("input", cfg.Input), slog.Int("year", year))
	logger.Info("run started")
	sum := &summary{Year: year}

	var raw *records.Table
	err = metrics.Time(job, "read", func() error {
		raw, err = readTable(ctx, cfg.Input)
		return err
	})
	if err != nil {
		return nil, err
	}
	sum.Read = raw.Len()
	metrics.RecordRow(job, metrics.KindRead, int64(raw.Len()))
	logger.Info("input read", slog.Int("rows", raw.Len()), slog.Int("columns", len(raw.Columns)))

	var (
		cleaned *records.Table
		stats   cleaning.Stats
	)
	err = metrics.Time(job, "clean", func() error {
		cleaned, stats, err = cleaning.Clean(raw, logger)
		return err
	})
	metrics.RecordRow(job, metrics.KindDroppedEmpty, int64(stats.EmptyRowsDropped))
	metrics.RecordRow(job, metrics.KindDroppedMissingKey, int64(stats.MissingKeyDropped))
	metrics.RecordRow(job, metrics.KindDroppedDuplicate, int64(stats.DuplicateDropped))
	if cfg.SkippedDir != "" && len(stats.Rejections) > 0 {
		path := skiplog.PathFor(cfg.SkippedDir, stem, year)
		reasons, werr := skiplog.WriteRejections(path, stats.Rejections)
		if werr != nil {
			logger.Warn("could not write skipped rows", slog.String("path", path), slog.Any("err", werr))
		} else {
			sum.Skipped, sum.SkippedReasons = path, reasons
			logger.Info("skipped rows written",
				slog.String("path", path),
				slog.Int("rows", len(stats.Rejections)),
				slog.Any("reasons", reasons))
		}
	}
	if err != nil {
		return nil, err
	}
	sum.Cleaned = cleaned.Len()

	parts := split.Split(cleaned, year)
	locs, degraded := mapping.TypeLocations(mapping.MapLocation(parts.Locations))
	logDegraded(logger, "locations", degraded)
	trends, degraded := mapping.TypeTrends(mapping.MapTrend(parts.Trends))
	logDegraded(logger, "trends", degraded)
	if parts.TrendDuplicates > 0 {
		logger.Warn("duplicate trend keys dropped", slog.Int("rows", parts.TrendDuplicates))
	}

	if err := cleaning.ValidateLocations(locs); err != nil {
		return nil, err
	}
	if err := cleaning.ValidateTrends(trends); err != nil {
		return nil, err
	}
	sum.Locations, sum.Trends = locs.Len(), trends.Len()
	logger.Info("records prepared", slog.Int("locations", locs.Len()), slog.Int("trends", trends.Len()))

	err = metrics.Time(job, "export", func() error {
		sum.Files, err = csvfile.Export(ctx, cfg.OutputDir, stem, year, locs, trends)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	logger.Info("csv files written",
		slog.String("locations", sum.Files.Locations),
		slog.String("trends", sum.Files.Trends))

	if cfg.UsesDatabase() {
		err = metrics.Time(job, "load", func() error {
			res, err := load(ctx, cfg, logger, locs, trends)
			sum.Load = res
			return err
		})
		if sum.Load != nil {
			metrics.RecordRow(job, metrics.KindLocationsUpserted, sum.Load.LocationsUpserted)
			metrics.RecordRow(job, metrics.KindTrendsUpserted, sum.Load.TrendsUpserted)
		}
		if err != nil {
			return sum, err
		}
	}

	logger.Info("run complete", slog.Duration("elapsed", time.Since(start)))
	return sum, nil
}

func readTable(ctx context.Context, path string) (*records.Table, error) {
	p, err := parser.ForPath(path)
	if err != nil {
		return nil, err
	}
	rc, err := file.NewLocal(path).Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	defer rc.Close()
	t, err := p.Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

// load upserts both record sets in one session bounded by cfg.DBTimeout.
func load(ctx context.Context, cfg *config.Config, logger *slog.Logger, locs, trends *records.Table) (*storage.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.DBTimeout)
	defer cancel()

	var res storage.Result
	err := storage.WithSession(ctx, storage.Config{Kind: cfg.Load, DSN: cfg.ConnString()}, func(db storage.DB) error {
		if cfg.CreateTables {
			if err := storage.EnsureTables(ctx, db); err != nil {
				return err
			}
		}
		l := storage.NewLoader(db, storage.WithBatchSize(cfg.BatchSize), storage.WithLogger(logger))
		var err error
		res, err = l.Load(ctx, locs, trends)
		return err
	})
	return &res, err
}

func logDegraded(logger *slog.Logger, set string, degraded map[string]int) {
	fields := make([]string, 0, len(degraded))
	for f, n := range degraded {
		if n > 0 {
			fields = append(fields, f)
		}
	}
	sort.Strings(fields)
	for _, f := range fields {
		logger.Warn("unparseable values set to null",
			slog.String("set", set), slog.String("field", f), slog.Int("count", degraded[f]))
	}
}
