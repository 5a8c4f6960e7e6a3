// Package daterange resolves named reporting periods into calendar date ranges.
package daterange

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/farigab/bragctl/internal/domain"
)

// Preset names a reporting period relative to a reference date.
type Preset string

const (
	Today       Preset = "today"
	Yesterday   Preset = "yesterday"
	ThisWeek    Preset = "thisWeek"
	LastWeek    Preset = "lastWeek"
	Last2Weeks  Preset = "last2Weeks"
	ThisMonth   Preset = "thisMonth"
	LastMonth   Preset = "lastMonth"
	Last3Months Preset = "last3Months"
	Last6Months Preset = "last6Months"
	ThisYear    Preset = "thisYear"
	LastYear    Preset = "lastYear"
)

var presets = []Preset{
	Today, Yesterday, ThisWeek, LastWeek, Last2Weeks,
	ThisMonth, LastMonth, Last3Months, Last6Months, ThisYear, LastYear,
}

// Presets returns every preset in display order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// ParsePreset validates a preset name.
func ParsePreset(s string) (Preset, error) {
	for _, p := range presets {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownPreset, s)
}

// DateFormat is the wire format of calendar dates.
const DateFormat = "2006-01-02"

// Range is an inclusive span of calendar dates.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Days returns the number of calendar days in the range, bounds included.
func (r Range) Days() int {
	start := time.Date(r.Start.Year(), r.Start.Month(), r.Start.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(r.End.Year(), r.End.Month(), r.End.Day(), 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours()/24) + 1
}

// StartDate formats the first day.
func (r Range) StartDate() string { return Format(r.Start) }

// EndDate formats the last day.
func (r Range) EndDate() string { return Format(r.End) }

func (r Range) String() string { return r.StartDate() + ".." + r.EndDate() }

// Format renders t as a calendar date in its own location.
func Format(t time.Time) string { return t.Format(DateFormat) }

// Midnight truncates t to the start of its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns the Monday of t's week.
func StartOfWeek(t time.Time) time.Time {
	diff := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-diff, 0, 0, 0, 0, t.Location())
}

// StartOfMonth returns the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth returns the last day of t's month.
func EndOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location())
}

// StartOfYear returns January 1st of t's year.
func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// EndOfYear returns December 31st of t's year.
func EndOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, t.Location())
}

func addDays(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+n, 0, 0, 0, 0, t.Location())
}

// compute resolves p against ref, which must already be at midnight.
func compute(p Preset, ref time.Time) (Range, error) {
	loc := ref.Location()
	switch p {
	case Today:
		return Range{ref, ref}, nil
	case Yesterday:
		d := addDays(ref, -1)
		return Range{d, d}, nil
	case ThisWeek:
		return Range{StartOfWeek(ref), ref}, nil
	case LastWeek:
		end := addDays(StartOfWeek(ref), -1)
		return Range{StartOfWeek(end), end}, nil
	case Last2Weeks:
		return Range{addDays(ref, -13), ref}, nil
	case ThisMonth:
		return Range{StartOfMonth(ref), ref}, nil
	case LastMonth:
		end := time.Date(ref.Year(), ref.Month(), 0, 0, 0, 0, 0, loc)
		return Range{StartOfMonth(end), end}, nil
	case Last3Months:
		return Range{time.Date(ref.Year(), ref.Month()-3, 1, 0, 0, 0, 0, loc), ref}, nil
	case Last6Months:
		return Range{time.Date(ref.Year(), ref.Month()-6, 1, 0, 0, 0, 0, loc), ref}, nil
	case ThisYear:
		return Range{StartOfYear(ref), ref}, nil
	case LastYear:
		prev := time.Date(ref.Year()-1, time.January, 1, 0, 0, 0, 0, loc)
		return Range{prev, EndOfYear(prev)}, nil
	default:
		return Range{}, fmt.Errorf("%w: %q", domain.ErrUnknownPreset, p)
	}
}

// CacheSize bounds the number of memoised ranges.
const CacheSize = 50

// Calculator resolves presets and memoises the results per reference date.
type Calculator struct {
	cache *lru.Cache[string, Range]
	now   func() time.Time
}

// NewCalculator creates a calculator with a CacheSize-entry memo.
func NewCalculator() *Calculator {
	// lru.New only fails on a non-positive size.
	cache, _ := lru.New[string, Range](CacheSize)
	return &Calculator{cache: cache, now: time.Now}
}

// Today returns the current local date at midnight.
func (c *Calculator) Today() time.Time {
	return Midnight(c.now())
}

// Range resolves p relative to ref. A zero ref means today.
func (c *Calculator) Range(p Preset, ref time.Time) (Range, error) {
	if ref.IsZero() {
		ref = c.Today()
	}
	ref = Midnight(ref)

	key := string(p) + "-" + Format(ref) + "-" + ref.Location().String()
	if r, ok := c.cache.Get(key); ok {
		return r, nil
	}

	r, err := compute(p, ref)
	if err != nil {
		return Range{}, err
	}
	c.cache.Add(key, r)
	return r, nil
}

// Len returns the number of memoised ranges.
func (c *Calculator) Len() int { return c.cache.Len() }

// Clear drops every memoised range.
func (c *Calculator) Clear() { c.cache.Purge() }
