// Package sqlite implements storage.DB on database/sql with the pure-Go
// modernc.org/sqlite driver. It is used for local runs and for exercising
// the loader without a server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"etl/internal/storage"

	_ "modernc.org/sqlite"
)

// Kind is the storage kind this package registers.
const Kind = "sqlite"

// maxParams is SQLITE_MAX_VARIABLE_NUMBER for builds since 3.32.
const maxParams = 32766

var dialect = storage.Dialect{Name: Kind, MaxParams: maxParams}

// Types are the SQLite column types of the restaurant tables. An INTEGER
// primary key aliases the rowid and is assigned automatically.
var Types = storage.Types{
	Text:      "TEXT",
	Real:      "REAL",
	Integer:   "INTEGER",
	Serial:    "INTEGER",
	Timestamp: "TIMESTAMP",
	Now:       "CURRENT_TIMESTAMP",
}

// DB is a storage.DB over a single SQLite connection.
type DB struct{ db *sql.DB }

var _ storage.DB = (*DB)(nil)

// Open opens dsn, e.g. "etl.db" or "file:etl.db?cache=shared". The pool is
// capped at one connection so ":memory:" databases stay a single session.
func Open(ctx context.Context, dsn string) (*DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Dialect() storage.Dialect { return dialect }

func (d *DB) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	return txAdapter{tx}, nil
}

func (d *DB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return rowsAffected(d.db.ExecContext(ctx, query, args...))
}

func (d *DB) QueryRow(ctx context.Context, query string, args ...any) storage.Row {
	return d.db.QueryRowContext(ctx, query, args...)
}

func (d *DB) QueryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (d *DB) Close(context.Context) error { return d.db.Close() }

type txAdapter struct{ tx *sql.Tx }

func (t txAdapter) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return rowsAffected(t.tx.ExecContext(ctx, query, args...))
}

func (t txAdapter) Commit(context.Context) error { return t.tx.Commit() }

func (t txAdapter) Rollback(context.Context) error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

func rowsAffected(res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func init() {
	storage.Register(Kind, func(ctx context.Context, cfg storage.Config) (storage.DB, error) {
		return Open(ctx, cfg.DSN)
	})
	storage.RegisterDDL(Kind, func(ctx context.Context, db storage.DB) error {
		return storage.CreateTables(ctx, db, Types)
	})
}
