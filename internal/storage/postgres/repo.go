// Package postgres implements storage.DB on a single pgx v5 connection.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"etl/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind is the storage kind this package registers.
const Kind = "postgres"

// maxParams is the protocol's bind-parameter limit (uint16).
const maxParams = 65535

var dialect = storage.Dialect{Name: Kind, Numbered: true, MaxParams: maxParams}

// Types are the Postgres column types of the restaurant tables.
var Types = storage.Types{
	Text:      "TEXT",
	Real:      "DOUBLE PRECISION",
	Integer:   "INTEGER",
	Serial:    "BIGSERIAL",
	Timestamp: "TIMESTAMPTZ",
	Now:       "CURRENT_TIMESTAMP",
}

// conn is the subset of *pgx.Conn the session uses.
type conn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close(ctx context.Context) error
}

// DB is a storage.DB backed by one Postgres connection.
type DB struct{ c conn }

var _ storage.DB = (*DB)(nil)

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*DB, error) {
	c, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := c.Ping(ctx); err != nil {
		_ = c.Close(ctx)
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &DB{c: c}, nil
}

func (d *DB) Dialect() storage.Dialect { return dialect }

func (d *DB) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := d.c.Begin(ctx)
	if err != nil {
		return nil, wrapPgError(err)
	}
	return txAdapter{tx}, nil
}

func (d *DB) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := d.c.Exec(ctx, sql, args...)
	if err != nil {
		return 0, wrapPgError(err)
	}
	return tag.RowsAffected(), nil
}

func (d *DB) QueryRow(ctx context.Context, sql string, args ...any) storage.Row {
	return d.c.QueryRow(ctx, sql, args...)
}

func (d *DB) QueryStrings(ctx context.Context, sql string, args ...any) ([]string, error) {
	rows, err := d.c.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapPgError(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, wrapPgError(err)
	}
	return out, nil
}

func (d *DB) Close(ctx context.Context) error { return d.c.Close(ctx) }

type txAdapter struct{ tx pgx.Tx }

func (t txAdapter) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := t.tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, wrapPgError(err)
	}
	return tag.RowsAffected(), nil
}

func (t txAdapter) Commit(ctx context.Context) error { return wrapPgError(t.tx.Commit(ctx)) }

func (t txAdapter) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

// wrapPgError surfaces the server detail and SQLSTATE when present.
func wrapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("%w (detail: %s, sqlstate %s)", err, pgErr.Detail, pgErr.SQLState())
	}
	return err
}

func init() {
	storage.Register(Kind, func(ctx context.Context, cfg storage.Config) (storage.DB, error) {
		return Open(ctx, cfg.DSN)
	})
	storage.RegisterDDL(Kind, func(ctx context.Context, db storage.DB) error {
		return storage.CreateTables(ctx, db, Types)
	})
}
