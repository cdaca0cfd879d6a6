package xlsx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := r
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParse(t *testing.T) {
	buf := workbook(t,
		[]any{"STORE_NO", " CHAIN ", "LATITUDE"},
		[]any{"1001", "Acme", 30.25},
		[]any{"", "", ""},
		[]any{"", "Other", nil},
	)

	tbl, err := NewParser().Parse(buf)
	require.NoError(t, err)

	assert.Equal(t, []string{"STORE_NO", "CHAIN", "LATITUDE"}, tbl.Columns)
	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, []int{2, 3, 4}, tbl.Lines)

	assert.Equal(t, "1001", tbl.Rows[0]["STORE_NO"])
	assert.Equal(t, "Acme", tbl.Rows[0]["CHAIN"])
	assert.Equal(t, "30.25", tbl.Rows[0]["LATITUDE"])

	for _, c := range tbl.Columns {
		assert.Nil(t, tbl.Rows[1][c])
	}
	assert.Nil(t, tbl.Rows[2]["STORE_NO"])
	assert.Equal(t, "Other", tbl.Rows[2]["CHAIN"])
	assert.Nil(t, tbl.Rows[2]["LATITUDE"])
}

func TestParse_DuplicateHeaders(t *testing.T) {
	buf := workbook(t,
		[]any{"A", "A", ""},
		[]any{"x", "y", "z"},
	)
	tbl, err := NewParser().Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "A.1", "column_3"}, tbl.Columns)
	assert.Equal(t, "y", tbl.Rows[0]["A.1"])
	assert.Equal(t, "z", tbl.Rows[0]["column_3"])
}

func TestParse_CellsBeyondHeaderKept(t *testing.T) {
	buf := workbook(t,
		[]any{"STORE_NO", "CHAIN"},
		[]any{"1001", "Acme"},
		[]any{nil, nil, "orphan"},
	)
	tbl, err := NewParser().Parse(buf)
	require.NoError(t, err)

	assert.Equal(t, []string{"STORE_NO", "CHAIN", "column_3"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())
	assert.Nil(t, tbl.Rows[0]["column_3"])
	assert.Equal(t, "orphan", tbl.Rows[1]["column_3"])
	assert.Nil(t, tbl.Rows[1]["STORE_NO"])
}

func TestParse_NotAWorkbook(t *testing.T) {
	_, err := NewParser().Parse(bytes.NewBufferString("STORE_NO,CHAIN\n1,a\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open workbook")
}

func TestParse_UnknownSheet(t *testing.T) {
	buf := workbook(t, []any{"STORE_NO"})
	_, err := (&Parser{Sheet: "Missing"}).Parse(buf)
	require.Error(t, err)
}
