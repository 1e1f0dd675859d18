package report

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firereduce/internal/frame"
	"firereduce/internal/reducer"
)

func TestValueCounts(t *testing.T) {
	got := ValueCounts([]any{"CA", "TX", "CA", nil, "AZ", "TX", "CA", nil})
	assert.Equal(t, []ValueCount{
		{"CA", 3},
		{"<missing>", 2},
		{"TX", 2},
		{"AZ", 1},
	}, got)

	assert.Empty(t, ValueCounts(nil))
}

func TestDescribe(t *testing.T) {
	s := Describe([]any{1.0, int64(2), "3", 4.0, nil, "n/a"})
	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 2.5, s.Mean, 1e-9)
	assert.InDelta(t, 2.5, s.P50, 1e-9)
	assert.InDelta(t, 1.2909944, s.Std, 1e-6)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
}

func TestDescribe_Empty(t *testing.T) {
	s := Describe([]any{nil, "x"})
	assert.Equal(t, 0, s.Count)
	assert.True(t, math.IsNaN(s.Mean))
	assert.True(t, math.IsNaN(s.Max))
}

func TestWrite(t *testing.T) {
	cols := []string{"STATE", "FIRE_SIZE", "FIRE_SIZE_CLASS", "DISCOVERY_DATE", "CONT_DATE", "NWCG_GENERAL_CAUSE"}
	tbl := frame.New(cols, [][]any{
		{"CA", 100.0, "G", "2020-05-03", "2020-05-04", "Natural"},
		{"CA", 120.0, "G", "2020-05-09", nil, "Natural"},
		{"TX", 0.5, "A", "oops", nil, "Human"},
	})
	res, err := reducer.New(nil, nil).Reduce(tbl)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tbl, res, Options{}))
	out := buf.String()

	assert.Contains(t, out, "Columns: [STATE, FIRE_SIZE, FIRE_SIZE_CLASS, DISCOVERY_DATE, CONT_DATE, NWCG_GENERAL_CAUSE]")
	assert.Contains(t, out, "STATE:\n  CA 2\n  TX 1\n  (2 distinct)")
	assert.Contains(t, out, "FIRE_SIZE:\n  count 3")
	assert.Contains(t, out, "DISCOVERY_DATE:\n  parsed 2, missing 0, unparseable 1")
	assert.Contains(t, out, "CONT_DATE:\n  parsed 1, missing 2, unparseable 0")
	assert.Contains(t, out, "NWCG_GENERAL_CAUSE:\n  Natural 2\n  Human   1")
	assert.Contains(t, out, "Rows before: 3\n")
	assert.Contains(t, out, "Rows after: 1\n")
	assert.True(t, strings.HasSuffix(out,
		"Output columns: [STATE, FIRE_SIZE_CLASS, DISCOVERY_MONTH, DISCOVERY_YEAR, NWCG_GENERAL_CAUSE, COUNT]\n"))
}

func TestWrite_TopNAndOptionalColumns(t *testing.T) {
	cols := []string{"STATE", "FIRE_SIZE_CLASS", "DISCOVERY_DATE", "NWCG_GENERAL_CAUSE"}
	tbl := frame.New(cols, [][]any{
		{"CA", "A", "2020-01-01", "Human"},
		{"TX", "A", "2020-01-01", "Human"},
		{"OR", "A", "2020-01-01", "Human"},
	})
	res, err := reducer.New(nil, nil).Reduce(tbl)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tbl, res, Options{TopN: 1}))
	out := buf.String()

	assert.Contains(t, out, "  ... 2 more\n  (3 distinct)")
	assert.NotContains(t, out, "FIRE_SIZE:")
	assert.NotContains(t, out, "CONT_DATE:")
}

func TestWrite_LargeCountsAreGrouped(t *testing.T) {
	rows := make([][]any, 1500)
	for i := range rows {
		rows[i] = []any{"CA", "A", "2020-01-01", "Human"}
	}
	tbl := frame.New([]string{"STATE", "FIRE_SIZE_CLASS", "DISCOVERY_DATE", "NWCG_GENERAL_CAUSE"}, rows)
	res, err := reducer.New(nil, nil).Reduce(tbl)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tbl, res, Options{}))
	assert.Contains(t, buf.String(), "Rows before: 1,500")
	assert.Contains(t, buf.String(), "  CA 1,500")
}
