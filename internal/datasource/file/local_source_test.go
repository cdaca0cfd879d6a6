package file

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"etl/internal/datasource"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ datasource.Source = (*Local)(nil)

func TestLocalOpen(t *testing.T) {
	t.Parallel()

	write := func(t *testing.T, payload string) string {
		t.Helper()
		p := filepath.Join(t.TempDir(), "YE24 data.csv")
		require.NoError(t, os.WriteFile(p, []byte(payload), 0o644))
		return p
	}

	t.Run("success_reads_content", func(t *testing.T) {
		t.Parallel()
		p := write(t, "STORE_NO\n1\n")
		src := NewLocal(p)
		assert.Equal(t, p, src.Name())

		rc, err := src.Open(context.Background())
		require.NoError(t, err)
		defer rc.Close()
		got, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "STORE_NO\n1\n", string(got))
	})

	t.Run("missing_file_errors_with_wrapping", func(t *testing.T) {
		t.Parallel()
		rc, err := NewLocal(filepath.Join(t.TempDir(), "missing.xlsx")).Open(context.Background())
		require.ErrorIs(t, err, os.ErrNotExist)
		assert.Contains(t, err.Error(), "open ")
		assert.Nil(t, rc)
	})

	t.Run("pre_canceled_context_short_circuits", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		rc, err := NewLocal(write(t, "ignored")).Open(ctx)
		require.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, rc)
	})
}
