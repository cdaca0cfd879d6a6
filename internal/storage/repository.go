// Package storage contains the backend-agnostic load protocol for the two
// restaurant tables and the small session contract backends implement.
//
// A backend (postgres, sqlite) registers a Factory and a DDL bootstrapper at
// init time; callers open a session with Open or WithSession and never
// branch on the backend themselves.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
)

// Row is a single-row query result.
type Row interface {
	Scan(dest ...any) error
}

// Tx is an open transaction.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DB is one session against the store. Implementations hold a single
// connection and are not safe for concurrent use.
type DB interface {
	Begin(ctx context.Context) (Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
	// QueryStrings returns the first column of every result row as text.
	QueryStrings(ctx context.Context, sql string, args ...any) ([]string, error)
	Dialect() Dialect
	Close(ctx context.Context) error
}

// Dialect carries the SQL differences the loader cares about.
type Dialect struct {
	Name string
	// Numbered placeholders ($1, $2, ...) when true, "?" otherwise.
	Numbered bool
	// MaxParams is the bind-parameter limit of one statement.
	MaxParams int
}

// Placeholder returns the i-th (1-based) bind marker.
func (d Dialect) Placeholder(i int) string {
	if d.Numbered {
		return "$" + strconv.Itoa(i)
	}
	return "?"
}

// Config selects and addresses a backend.
type Config struct {
	Kind string
	DSN  string
}

// Factory opens a session for one backend kind.
type Factory func(ctx context.Context, cfg Config) (DB, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. It is called from backend
// packages' init functions.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// Kinds lists the registered backend kinds.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Open opens a session with the backend registered for cfg.Kind.
func Open(ctx context.Context, cfg Config) (DB, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown kind %q (registered: %v)", cfg.Kind, Kinds())
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("storage: %s: connection string is required", cfg.Kind)
	}
	return f(ctx, cfg)
}

// WithSession opens a session, runs fn and always closes the session. An
// error from fn takes precedence over a close error.
func WithSession(ctx context.Context, cfg Config, fn func(DB) error) (err error) {
	db, err := Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		// Close must run even when ctx has expired.
		if cerr := db.Close(context.WithoutCancel(ctx)); cerr != nil && err == nil {
			err = fmt.Errorf("storage: close: %w", cerr)
		}
	}()
	return fn(db)
}

// Ping runs a trivial query to prove the session works.
func Ping(ctx context.Context, db DB) error {
	var one int64
	if err := db.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("storage: ping: %w", err)
	}
	return nil
}
