package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"etl/internal/ddl"
	"etl/internal/storage"
	"etl/pkg/records"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTableSQL(t *testing.T) {
	loc, err := ddl.BuildCreateTableSQL(storage.LocationTableDef(Types))
	require.NoError(t, err)
	assert.Contains(t, loc, `"store_no" TEXT NOT NULL`)
	assert.Contains(t, loc, `"latitude" DOUBLE PRECISION`)
	assert.Contains(t, loc, `"created_at" TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP`)
	assert.Contains(t, loc, `PRIMARY KEY ("store_no")`)

	tr, err := ddl.BuildCreateTableSQL(storage.TrendTableDef(Types))
	require.NoError(t, err)
	assert.Contains(t, tr, `"trend_id" BIGSERIAL NOT NULL`)
	assert.Contains(t, tr, `"year" INTEGER NOT NULL`)
	assert.Contains(t, tr, `UNIQUE ("store_no", "year")`)
	assert.NotContains(t, tr, "REFERENCES")
}

func TestWrapPgError(t *testing.T) {
	assert.NoError(t, wrapPgError(nil))

	plain := errors.New("conn reset")
	assert.Same(t, plain, wrapPgError(plain))

	pgErr := &pgconn.PgError{Code: "23502", Message: "null value", Detail: "Failing row contains (null)."}
	err := wrapPgError(fmt.Errorf("exec: %w", pgErr))
	assert.ErrorAs(t, err, &pgErr)
	assert.Contains(t, err.Error(), "Failing row contains")
	assert.Contains(t, err.Error(), "23502")
}

// TestLoad_Postgres runs the load protocol against a live server. Set
// TEST_PG_DSN to a disposable database to enable it.
func TestLoad_Postgres(t *testing.T) {
	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		t.Skip("TEST_PG_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	err := storage.WithSession(ctx, storage.Config{Kind: Kind, DSN: dsn}, func(db storage.DB) error {
		for _, tbl := range []string{storage.TrendTable, storage.LocationTable} {
			if _, err := db.Exec(ctx, "DROP TABLE IF EXISTS "+ddl.QuoteIdent(tbl)); err != nil {
				return err
			}
		}
		require.NoError(t, storage.EnsureTables(ctx, db))

		l := storage.NewLoader(db, storage.WithBatchSize(2))
		locs := records.New([]string{"store_no", "chain", "latitude"}, []records.Record{
			{"store_no": "A", "chain": "x", "latitude": 1.5},
			{"store_no": "B", "chain": "y", "latitude": nil},
		})
		trs := records.New([]string{"store_no", "year", "past_yrs"}, []records.Record{
			{"store_no": "A", "year": int64(2024), "past_yrs": int64(3)},
			{"store_no": "C", "year": int64(2024), "past_yrs": nil},
		})

		_, err := l.Load(ctx, locs, trs)
		require.ErrorIs(t, err, storage.ErrForeignKey)

		res, err := l.Load(ctx, locs, records.New(trs.Columns, trs.Rows[:1]))
		require.NoError(t, err)
		assert.Equal(t, int64(2), res.Stats.TotalLocations)
		assert.Equal(t, int64(1), res.Stats.TotalTrends)
		assert.Equal(t, "2024-2024", res.Stats.YearRange())

		got, err := db.QueryStrings(ctx, `SELECT "store_no" FROM "restaurant_location" ORDER BY 1`)
		require.NoError(t, err)
		assert.Equal(t, "A,B", strings.Join(got, ","))
		return nil
	})
	require.NoError(t, err)
}
