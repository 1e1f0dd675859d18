// Package reducer projects wildfire rows onto the five-field key and
// coalesces duplicate keys into counted groups. Keys seen only once are dropped.
package reducer

import (
	"database/sql"
	"errors"
	"sort"

	"go.uber.org/zap"

	"firereduce/internal/dates"
	"firereduce/internal/fires"
	"firereduce/internal/frame"
)

// maxLoggedDateErrors bounds per-value debug logging of unparseable dates.
const maxLoggedDateErrors = 5

// DateStats summarizes how one date column parsed.
type DateStats struct {
	Parsed      int
	Missing     int // null or blank
	Unparseable int // soft DateParseError
}

// Projection is the output of Project.
type Projection struct {
	Keys          []fires.Key
	DiscoveryDate DateStats
	ContDate      DateStats
	HasContDate   bool
}

// Result is the output of Reduce.
type Result struct {
	Projection
	Groups []fires.Group
}

// RowsBefore returns the number of projected rows.
func (r *Result) RowsBefore() int { return len(r.Keys) }

// RowsAfter returns the number of coalesced groups.
func (r *Result) RowsAfter() int { return len(r.Groups) }

// Reducer derives calendar fields and aggregates duplicates.
type Reducer struct {
	parser *dates.Parser
	logger *zap.Logger
}

// New returns a Reducer. A nil parser uses the built-in layouts.
func New(parser *dates.Parser, logger *zap.Logger) *Reducer {
	if parser == nil {
		parser = dates.NewParser()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reducer{parser: parser, logger: logger}
}

// Reduce projects t and aggregates the duplicates.
// It fails only when t lacks a required column.
func (r *Reducer) Reduce(t *frame.Table) (*Result, error) {
	p, err := r.Project(t)
	if err != nil {
		return nil, err
	}
	res := &Result{Projection: *p, Groups: Aggregate(p.Keys)}

	r.logger.Debug("reduced",
		zap.Int("rows_before", res.RowsBefore()),
		zap.Int("rows_after", res.RowsAfter()),
		zap.Int("unparseable_discovery_dates", p.DiscoveryDate.Unparseable))
	return res, nil
}

// Project maps every row of t to its key. DISCOVERY_MONTH and DISCOVERY_YEAR
// come from DISCOVERY_DATE; an unparseable date leaves both null.
// CONT_DATE is parsed when present, for its statistics only.
func (r *Reducer) Project(t *frame.Table) (*Projection, error) {
	if missing := t.Missing(fires.RequiredColumns...); len(missing) > 0 {
		return nil, &fires.MissingColumnsError{Columns: missing}
	}

	stateIdx, _ := t.Index(fires.ColState)
	classIdx, _ := t.Index(fires.ColFireSizeClass)
	dateIdx, _ := t.Index(fires.ColDiscoveryDate)
	causeIdx, _ := t.Index(fires.ColGeneralCause)
	contIdx, hasCont := t.Index(fires.ColContDate)

	p := &Projection{
		Keys:        make([]fires.Key, len(t.Rows)),
		HasContDate: hasCont,
	}
	logged := 0

	for i, row := range t.Rows {
		month, year, ok, err := r.parser.MonthYear(row[dateIdx])
		p.DiscoveryDate.record(ok, err)
		if err != nil && logged < maxLoggedDateErrors {
			logged++
			r.logger.Debug("unparseable discovery date", zap.Int("row", i+1), zap.Error(err))
		}

		if hasCont {
			_, ok, err := r.parser.Parse(row[contIdx])
			p.ContDate.record(ok, err)
		}

		p.Keys[i] = fires.Key{
			State:          textField(row[stateIdx]),
			FireSizeClass:  textField(row[classIdx]),
			DiscoveryMonth: fires.Int(month, ok),
			DiscoveryYear:  fires.Int(year, ok),
			GeneralCause:   textField(row[causeIdx]),
		}
	}

	if p.DiscoveryDate.Unparseable > 0 {
		r.logger.Warn("some discovery dates could not be parsed; their month and year are missing",
			zap.Int("count", p.DiscoveryDate.Unparseable))
	}
	return p, nil
}

func (s *DateStats) record(ok bool, err error) {
	var perr *dates.DateParseError
	switch {
	case ok:
		s.Parsed++
	case errors.As(err, &perr):
		s.Unparseable++
	default:
		s.Missing++
	}
}

func textField(v any) sql.NullString {
	return fires.String(frame.Text(v))
}

// Aggregate counts identical keys and keeps those seen at least twice,
// sorted ascending by key with nulls first.
func Aggregate(keys []fires.Key) []fires.Group {
	counts := make(map[fires.Key]int64, len(keys))
	for _, k := range keys {
		counts[k]++
	}

	groups := make([]fires.Group, 0)
	for k, n := range counts {
		if n < 2 {
			continue
		}
		groups = append(groups, fires.Group{Key: k, Count: n})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key.Less(groups[j].Key) })
	return groups
}
