package storage

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"etl/internal/ddl"
	"etl/internal/mapping"
	"etl/pkg/records"
)

// DefaultBatchSize is the number of rows per INSERT statement.
const DefaultBatchSize = 500

// Loader writes location and trend tables through one session.
type Loader struct {
	db        DB
	batchSize int
	logger    *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithBatchSize sets the rows per statement. Non-positive values are ignored.
func WithBatchSize(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.batchSize = n
		}
	}
}

// WithLogger sets the progress logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader returns a Loader over db.
func NewLoader(db DB, opts ...Option) *Loader {
	l := &Loader{db: db, batchSize: DefaultBatchSize, logger: slog.Default()}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Result summarizes one Load call.
type Result struct {
	LocationsUpserted int64
	TrendsUpserted    int64
	Stats             LoadStats
}

// Load upserts locations, verifies that every trend store exists, then
// upserts trends. Locations stay committed when a later step fails. A
// missing store aborts the trend load with a *ForeignKeyError. Summary
// statistics are best effort: a failure there is logged, not returned.
func (l *Loader) Load(ctx context.Context, locations, trends *records.Table) (Result, error) {
	var res Result

	n, err := l.UpsertLocations(ctx, locations)
	if err != nil {
		return res, fmt.Errorf("upsert locations: %w", err)
	}
	res.LocationsUpserted = n

	fk, err := l.VerifyForeignKeys(ctx, trends)
	if err != nil {
		return res, fmt.Errorf("verify foreign keys: %w", err)
	}
	if !fk.Valid {
		return res, NewForeignKeyError(fk.Missing)
	}

	n, err = l.UpsertTrends(ctx, trends)
	if err != nil {
		return res, fmt.Errorf("upsert trends: %w", err)
	}
	res.TrendsUpserted = n

	stats, err := l.Stats(ctx)
	if err != nil {
		l.logger.Warn("load statistics unavailable", slog.Any("err", err))
		return res, nil
	}
	res.Stats = stats
	l.logger.Info("load complete",
		slog.Int64("locations_upserted", res.LocationsUpserted),
		slog.Int64("trends_upserted", res.TrendsUpserted),
		slog.Int64("total_locations", stats.TotalLocations),
		slog.Int64("total_trends", stats.TotalTrends),
		slog.Int64("locations_with_verified_coords", stats.LocationsWithVerifiedCoords),
		slog.String("year_range", stats.YearRange()),
	)
	return res, nil
}

// UpsertLocations inserts or updates rows keyed on store_no. On conflict every
// supplied column except store_no and created_at takes the incoming value.
// It returns the combined inserted+updated count.
func (l *Loader) UpsertLocations(ctx context.Context, t *records.Table) (int64, error) {
	return l.upsert(ctx, upsertPlan{
		table:    LocationTable,
		conflict: LocationKey,
		keep:     []string{ColCreatedAt},
	}, t)
}

// UpsertTrends inserts or updates rows keyed on (store_no, year). trend_id is
// never written; created_at is never overwritten.
func (l *Loader) UpsertTrends(ctx context.Context, t *records.Table) (int64, error) {
	return l.upsert(ctx, upsertPlan{
		table:    TrendTable,
		conflict: TrendKey,
		skip:     []string{ColTrendID},
		keep:     []string{ColCreatedAt},
	}, t)
}

// FKResult is the outcome of VerifyForeignKeys. Missing keeps the order in
// which stores first appear in the trend table.
type FKResult struct {
	Valid   bool
	Missing []string
}

// VerifyForeignKeys checks that every distinct store_no of the trend table
// exists in restaurant_location.
func (l *Loader) VerifyForeignKeys(ctx context.Context, trends *records.Table) (FKResult, error) {
	keys := distinctKeys(trends, mapping.FieldStoreNo)
	if len(keys) == 0 {
		return FKResult{Valid: true}, nil
	}

	d := l.db.Dialect()
	chunk := min(l.batchSize, d.MaxParams)
	found := make(map[string]struct{}, len(keys))
	for start := 0; start < len(keys); start += chunk {
		part := keys[start:min(start+chunk, len(keys))]
		marks := make([]string, len(part))
		args := make([]any, len(part))
		for i, k := range part {
			marks[i] = d.Placeholder(i + 1)
			args[i] = k
		}
		q := fmt.Sprintf("SELECT %s FROM %s WHERE %s IN (%s)",
			ddl.QuoteIdent(mapping.FieldStoreNo), ddl.QuoteFQN(LocationTable),
			ddl.QuoteIdent(mapping.FieldStoreNo), strings.Join(marks, ", "))
		existing, err := l.db.QueryStrings(ctx, q, args...)
		if err != nil {
			return FKResult{}, err
		}
		for _, k := range existing {
			found[k] = struct{}{}
		}
	}

	var missing []string
	for _, k := range keys {
		if _, ok := found[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		l.logger.Error("foreign key check failed",
			slog.Int("missing", len(missing)),
			slog.Any("sample", NewForeignKeyError(missing).Sample))
	}
	return FKResult{Valid: len(missing) == 0, Missing: missing}, nil
}

type upsertPlan struct {
	table    string
	conflict []string
	skip     []string // never inserted
	keep     []string // inserted but not overwritten on conflict
}

func (l *Loader) upsert(ctx context.Context, plan upsertPlan, t *records.Table) (int64, error) {
	if t.Len() == 0 {
		l.logger.Info("nothing to upsert", slog.String("table", plan.table))
		return 0, nil
	}

	var cols []string
	for _, c := range t.Columns {
		if !slices.Contains(plan.skip, c) {
			cols = append(cols, c)
		}
	}
	for _, k := range plan.conflict {
		if !slices.Contains(cols, k) {
			return 0, fmt.Errorf("%s: conflict column %s missing from input", plan.table, k)
		}
	}
	var update []string
	for _, c := range cols {
		if !slices.Contains(plan.conflict, c) && !slices.Contains(plan.keep, c) {
			update = append(update, c)
		}
	}

	d := l.db.Dialect()
	perStmt := max(1, min(l.batchSize, d.MaxParams/len(cols)))

	start := time.Now()
	var total int64
	err := l.inTx(ctx, func(tx Tx) error {
		for lo := 0; lo < t.Len(); lo += perStmt {
			rows := t.Rows[lo:min(lo+perStmt, t.Len())]
			q, args := buildUpsert(d, plan.table, cols, plan.conflict, update, rows)
			n, err := tx.Exec(ctx, q, args...)
			if err != nil {
				return fmt.Errorf("%s rows %d-%d: %w", plan.table, lo+1, lo+len(rows), err)
			}
			total += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	l.logger.Info("upserted",
		slog.String("table", plan.table),
		slog.Int("rows", t.Len()),
		slog.Int64("affected", total),
		slog.Duration("elapsed", time.Since(start)))
	return total, nil
}

// inTx runs fn in a transaction, committing on success and rolling back on
// any error.
func (l *Loader) inTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			l.logger.Warn("rollback failed", slog.Any("err", rbErr))
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		_ = tx.Rollback(context.WithoutCancel(ctx))
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// buildUpsert renders one multi-row INSERT ... ON CONFLICT statement.
func buildUpsert(d Dialect, table string, cols, conflict, update []string, rows []records.Record) (string, []any) {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = ddl.QuoteIdent(c)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", ddl.QuoteFQN(table), strings.Join(quoted, ", "))

	args := make([]any, 0, len(rows)*len(cols))
	for i, r := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j, c := range cols {
			if j > 0 {
				sb.WriteString(", ")
			}
			args = append(args, r[c])
			sb.WriteString(d.Placeholder(len(args)))
		}
		sb.WriteByte(')')
	}

	keys := make([]string, len(conflict))
	for i, k := range conflict {
		keys[i] = ddl.QuoteIdent(k)
	}
	fmt.Fprintf(&sb, " ON CONFLICT (%s) ", strings.Join(keys, ", "))
	if len(update) == 0 {
		sb.WriteString("DO NOTHING")
		return sb.String(), args
	}
	sets := make([]string, len(update))
	for i, c := range update {
		q := ddl.QuoteIdent(c)
		sets[i] = q + " = EXCLUDED." + q
	}
	sb.WriteString("DO UPDATE SET ")
	sb.WriteString(strings.Join(sets, ", "))
	return sb.String(), args
}

func distinctKeys(t *records.Table, col string) []string {
	if t.Len() == 0 || !t.Has(col) {
		return nil
	}
	seen := make(map[string]struct{}, t.Len())
	var out []string
	for _, v := range t.Values(col) {
		if records.IsNull(v) {
			continue
		}
		k := records.KeyString(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
