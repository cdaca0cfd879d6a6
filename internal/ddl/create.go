// Package ddl defines a small, backend-agnostic model for SQL DDL and renders
// CREATE TABLE IF NOT EXISTS statements from it.
//
// Identifiers are double-quoted, which both Postgres and SQLite accept.
// ColumnDef.Default is emitted as raw SQL; the caller is responsible for
// dialect correctness.
package ddl

import (
	"fmt"
	"strings"
)

// BuildCreateTableSQL renders t as:
//
//	CREATE TABLE IF NOT EXISTS <FQN> (
//	  <name> <type> [NOT NULL] [DEFAULT <expr>],
//	  ...,
//	  [PRIMARY KEY (<pk-cols>)],
//	  [UNIQUE (<cols>)]...
//	);
//
// Primary-key columns are always NOT NULL. Every UNIQUE column must be one of
// the table's columns.
func BuildCreateTableSQL(t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns)+1+len(t.Unique))
	var pks []string

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", name)
		}

		var sb strings.Builder
		sb.WriteString(QuoteIdent(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable || c.PrimaryKey {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, QuoteIdent(name))
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	for _, u := range t.Unique {
		if len(u) == 0 {
			continue
		}
		quoted := make([]string, len(u))
		for i, name := range u {
			if _, ok := t.Column(name); !ok {
				return "", fmt.Errorf("ddl: unique column %s not in table %s", name, fqn)
			}
			quoted[i] = QuoteIdent(name)
		}
		cols = append(cols, fmt.Sprintf("UNIQUE (%s)", strings.Join(quoted, ", ")))
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		QuoteFQN(fqn),
		strings.Join(cols, ",\n  "),
	), nil
}

// QuoteIdent quotes a single identifier segment, e.g.:
//
//	QuoteIdent(`store_no`)   => `"store_no"`
//	QuoteIdent(`weird"name`) => `"weird""name"`
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// QuoteFQN quotes a possibly schema-qualified name like "public.users" to
// `"public"."users"`. Empty segments are ignored.
func QuoteFQN(f string) string {
	parts := strings.Split(f, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, QuoteIdent(p))
	}
	return strings.Join(out, ".")
}
