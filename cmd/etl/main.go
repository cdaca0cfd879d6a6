// Command etl loads a yearly restaurant spreadsheet (YEnn*.xlsx), cleans it,
// writes the location and trend CSV files and optionally upserts both record
// sets into Postgres or SQLite.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	// register all backends with the storage factory.
	_ "etl/internal/storage/all"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
