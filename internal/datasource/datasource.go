// Package datasource opens the input file and knows how its name encodes
// the reporting year.
package datasource

import (
	"context"
	"io"
)

// Source yields the raw bytes of one input file.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	// Name is the path or name the source was created from.
	Name() string
}
