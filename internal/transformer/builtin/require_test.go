package builtin

import (
	"testing"

	"etl/pkg/records"

	"github.com/stretchr/testify/assert"
)

func TestRequire_DropsNullAndBlank(t *testing.T) {
	in := records.New([]string{"STORE_NO", "CHAIN"}, []records.Record{
		{"STORE_NO": "1", "CHAIN": "A"},
		{"STORE_NO": nil, "CHAIN": "B"},
		{"STORE_NO": "  ", "CHAIN": "C"},
		{"STORE_NO": "4", "CHAIN": nil},
	})

	out, dropped := Require{Fields: []string{"STORE_NO"}}.Apply(in)

	assert.Equal(t, 2, out.Len())
	assert.Equal(t, "1", out.Rows[0]["STORE_NO"])
	assert.Equal(t, "4", out.Rows[1]["STORE_NO"])
	assert.Equal(t, []int{3, 4}, dropped)
}

func TestDropEmpty(t *testing.T) {
	in := &records.Table{
		Columns: []string{"STORE_NO", "CHAIN"},
		Rows: []records.Record{
			{"STORE_NO": "1", "CHAIN": "A"},
			{"STORE_NO": nil, "CHAIN": ""},
			{"STORE_NO": nil, "CHAIN": "B"},
		},
		Lines: []int{2, 7, 8},
	}

	out, dropped := DropEmpty{}.Apply(in)

	assert.Equal(t, 2, out.Len())
	assert.Equal(t, []int{7}, dropped)
	assert.Equal(t, []int{2, 8}, out.Lines)
}
