// Package report prints the diagnostics shown after a reduction: source
// columns, category value counts, a FIRE_SIZE summary, date parse results
// and row counts. It never influences the output table.
package report

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/montanaflynn/stats"

	"firereduce/internal/fires"
	"firereduce/internal/frame"
	"firereduce/internal/reducer"
)

// missingLabel stands in for null category values.
const missingLabel = "<missing>"

// Options control the report.
type Options struct {
	// TopN caps each value-count listing; 0 lists every value.
	TopN int
}

// ValueCount is one entry of a value-count listing.
type ValueCount struct {
	Value string
	Count int
}

// Summary is the describe() block for a numeric column.
type Summary struct {
	Count               int
	Mean, Std, Min, Max float64
	P25, P50, P75       float64
}

// Write prints the report for source table t and its reduction res.
func Write(w io.Writer, t *frame.Table, res *reducer.Result, opts Options) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Columns: [%s]\n", strings.Join(t.Columns, ", "))

	fmt.Fprintln(bw, "STATE:")
	writeCounts(bw, ValueCounts(t.Column(fires.ColState)), opts.TopN)

	if t.Has(fires.ColFireSize) {
		fmt.Fprintln(bw, "FIRE_SIZE:")
		writeSummary(bw, Describe(t.Column(fires.ColFireSize)))
	}

	fmt.Fprintln(bw, "DISCOVERY_DATE:")
	writeDates(bw, res.DiscoveryDate)
	if res.HasContDate {
		fmt.Fprintln(bw, "CONT_DATE:")
		writeDates(bw, res.ContDate)
	}

	fmt.Fprintln(bw, "NWCG_GENERAL_CAUSE:")
	writeCounts(bw, ValueCounts(t.Column(fires.ColGeneralCause)), opts.TopN)

	fmt.Fprintf(bw, "Rows before: %s\n", humanize.Comma(int64(res.RowsBefore())))
	fmt.Fprintf(bw, "Rows after: %s\n", humanize.Comma(int64(res.RowsAfter())))
	fmt.Fprintf(bw, "Output columns: [%s]\n", strings.Join(fires.OutputColumns, ", "))

	return bw.Flush()
}

// ValueCounts tallies category values, most frequent first, ties by value.
// Nulls are counted under "<missing>".
func ValueCounts(values []any) []ValueCount {
	counts := make(map[string]int)
	for _, v := range values {
		s, ok := frame.Text(v)
		if !ok {
			s = missingLabel
		}
		counts[s]++
	}

	out := make([]ValueCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, ValueCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// Describe summarizes the numeric values in a column; non-numeric values are skipped.
// Statistics that cannot be computed are NaN.
func Describe(values []any) Summary {
	var data stats.Float64Data
	for _, v := range values {
		if f, ok := frame.Number(v); ok && !math.IsNaN(f) {
			data = append(data, f)
		}
	}

	s := Summary{Count: len(data)}
	s.Mean = orNaN(stats.Mean(data))
	s.Std = orNaN(stats.StandardDeviationSample(data))
	s.Min = orNaN(stats.Min(data))
	s.Max = orNaN(stats.Max(data))
	s.P25 = orNaN(stats.Percentile(data, 25))
	s.P50 = orNaN(stats.Median(data))
	s.P75 = orNaN(stats.Percentile(data, 75))
	return s
}

func orNaN(v float64, err error) float64 {
	if err != nil {
		return math.NaN()
	}
	return v
}

func writeCounts(w io.Writer, counts []ValueCount, topN int) {
	shown := counts
	if topN > 0 && len(shown) > topN {
		shown = shown[:topN]
	}
	width := 0
	for _, c := range shown {
		if len(c.Value) > width {
			width = len(c.Value)
		}
	}
	for _, c := range shown {
		fmt.Fprintf(w, "  %-*s %s\n", width, c.Value, humanize.Comma(int64(c.Count)))
	}
	if rest := len(counts) - len(shown); rest > 0 {
		fmt.Fprintf(w, "  ... %d more\n", rest)
	}
	fmt.Fprintf(w, "  (%d distinct)\n", len(counts))
}

func writeSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "  count %s\n", humanize.Comma(int64(s.Count)))
	for _, row := range []struct {
		label string
		v     float64
	}{
		{"mean", s.Mean},
		{"std", s.Std},
		{"min", s.Min},
		{"25%", s.P25},
		{"50%", s.P50},
		{"75%", s.P75},
		{"max", s.Max},
	} {
		fmt.Fprintf(w, "  %-5s %s\n", row.label, formatFloat(row.v))
	}
}

func writeDates(w io.Writer, d reducer.DateStats) {
	fmt.Fprintf(w, "  parsed %s, missing %s, unparseable %s\n",
		humanize.Comma(int64(d.Parsed)), humanize.Comma(int64(d.Missing)), humanize.Comma(int64(d.Unparseable)))
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return humanize.CommafWithDigits(v, 6)
}
