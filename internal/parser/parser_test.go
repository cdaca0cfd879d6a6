package parser

import (
	"testing"

	"etl/internal/parser/csv"
	"etl/internal/parser/xlsx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForPath(t *testing.T) {
	p, err := ForPath("/in/YE24 Sample.XLSX")
	require.NoError(t, err)
	assert.IsType(t, &xlsx.Parser{}, p)

	p, err = ForPath("YE24.csv")
	require.NoError(t, err)
	assert.IsType(t, &csv.Parser{}, p)

	_, err = ForPath("YE24.xls")
	require.Error(t, err)
}
