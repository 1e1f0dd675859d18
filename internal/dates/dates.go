// Package dates parses calendar dates the way wildfire exports store them:
// ISO text, US month/day/year text, driver-decoded time.Time values and
// Julian day numbers. Parsing is best-effort; a value that cannot be read
// is reported as a *DateParseError and the caller records it as missing.
package dates

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrUnrecognized is wrapped by DateParseError when no layout matched.
var ErrUnrecognized = errors.New("unrecognized date format")

// ErrOutOfRange is wrapped by DateParseError for numbers outside the Julian day range.
var ErrOutOfRange = errors.New("julian day out of range")

// DateParseError reports a single value that could not be read as a date.
// It is soft: the run continues with the value treated as missing.
type DateParseError struct {
	Value any
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("parse date %v: %v", e.Value, e.Err)
}

func (e *DateParseError) Unwrap() error { return e.Err }

// builtinLayouts are tried in order after any configured layouts.
var builtinLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"20060102",
}

// Julian day bounds: 0001-01-01 and 9999-12-31.
const (
	minJulianDay  = 1721425.5
	maxJulianDay  = 5373484.5
	unixEpochJD   = 2440587.5
	secondsPerDay = 86400
)

// Parser is a lenient date parser. The zero value uses the built-in layouts.
type Parser struct {
	layouts []string
}

// NewParser returns a parser that tries extra layouts before the built-in ones.
func NewParser(extra ...string) *Parser {
	layouts := make([]string, 0, len(extra)+len(builtinLayouts))
	for _, l := range extra {
		if strings.TrimSpace(l) != "" {
			layouts = append(layouts, l)
		}
	}
	return &Parser{layouts: append(layouts, builtinLayouts...)}
}

// Parse reads v as a date. A written offset or a time.Time location is kept,
// so the calendar fields are those of the value as stored.
// A nil or blank value returns ok=false with no error; it is simply missing.
// An unreadable value returns ok=false and a *DateParseError.
func (p *Parser) Parse(v any) (t time.Time, ok bool, err error) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false, nil
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false, nil
		}
		return x, true, nil
	case []byte:
		return p.parseString(string(x))
	case string:
		return p.parseString(x)
	case int64:
		return fromJulian(v, float64(x))
	case float64:
		return fromJulian(v, x)
	case int:
		return fromJulian(v, float64(x))
	default:
		return time.Time{}, false, &DateParseError{Value: v, Err: fmt.Errorf("unsupported type %T", v)}
	}
}

// MonthYear parses v and returns its calendar month (1-12) and year.
func (p *Parser) MonthYear(v any) (month, year int64, ok bool, err error) {
	t, ok, err := p.Parse(v)
	if !ok {
		return 0, 0, false, err
	}
	return int64(t.Month()), int64(t.Year()), true, nil
}

func (p *Parser) parseString(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, nil
	}

	layouts := p.layouts
	if layouts == nil {
		layouts = builtinLayouts
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true, nil
		}
	}

	// Exports from SQLite's julianday() arrive as numeric text.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromJulian(s, f)
	}

	return time.Time{}, false, &DateParseError{Value: s, Err: ErrUnrecognized}
}

func fromJulian(orig any, jd float64) (time.Time, bool, error) {
	if math.IsNaN(jd) || jd < minJulianDay || jd > maxJulianDay {
		return time.Time{}, false, &DateParseError{Value: orig, Err: ErrOutOfRange}
	}
	secs := (jd - unixEpochJD) * secondsPerDay
	whole := math.Floor(secs)
	nanos := int64(math.Round((secs - whole) * 1e9))
	return time.Unix(int64(whole), nanos).UTC(), true, nil
}
