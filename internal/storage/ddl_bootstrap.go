package storage

import (
	"context"
	"fmt"
	"sync"

	"etl/internal/ddl"
)

// DDLBootstrapper creates both tables on an open session if they do not
// exist yet. Backends register one per kind.
type DDLBootstrapper func(ctx context.Context, db DB) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) the bootstrapper for kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTables runs the bootstrapper registered for the session's dialect.
func EnsureTables(ctx context.Context, db DB) error {
	kind := db.Dialect().Name
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage kind %q", kind)
	}
	return fn(ctx, db)
}

// CreateTables renders and executes CREATE TABLE IF NOT EXISTS for both
// tables with the given types. Backends use it as their bootstrapper.
func CreateTables(ctx context.Context, db DB, ty Types) error {
	for _, def := range []ddl.TableDef{LocationTableDef(ty), TrendTableDef(ty)} {
		stmt, err := ddl.BuildCreateTableSQL(def)
		if err != nil {
			return err
		}
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create table %s: %w", def.FQN, err)
		}
	}
	return nil
}
