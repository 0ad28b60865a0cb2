// Package datekey formats, parses and enumerates calendar days using the
// canonical YYYY-MM-DD key that identifies a day in the reservation ledger.
//
// Keys are only ever produced by Format and read back by Parse. Nothing in the
// application compares days through any other textual form, so a key always
// names the same calendar day regardless of server locale.
package datekey

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the reference layout for a date key.
const Layout = "2006-01-02"

// ErrInvalid is returned by Parse for anything that is not exactly YYYY-MM-DD.
var ErrInvalid = errors.New("date must be in YYYY-MM-DD form")

// Format returns the key for t's calendar date in t's own location.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Parse returns midnight of the keyed day in loc. A nil loc means UTC.
func Parse(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if len(key) != len(Layout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalid, key)
	}
	t, err := time.ParseInLocation(Layout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalid, key)
	}
	return t, nil
}

// StartOfDay returns midnight of t's calendar date in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Today is the key of now's calendar date in loc.
func Today(now time.Time, loc *time.Location) string {
	return Format(StartOfDay(now, loc))
}

// DaysBetween counts whole calendar days from a to b. It is negative when b
// is before a. Both values are reduced to their calendar dates first, so a
// daylight-saving shift inside the range does not change the result.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// Days lists every calendar day from from to to inclusive, at midnight in
// from's location. It returns nil when to is before from.
func Days(from, to time.Time) []time.Time {
	n := DaysBetween(from, to)
	if n < 0 {
		return nil
	}
	loc := from.Location()
	y, m, d := from.Date()
	out := make([]time.Time, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, time.Date(y, m, d+i, 0, 0, 0, 0, loc))
	}
	return out
}

// Keys is Days rendered as date keys.
func Keys(from, to time.Time) []string {
	days := Days(from, to)
	keys := make([]string, len(days))
	for i, d := range days {
		keys[i] = Format(d)
	}
	return keys
}

// InMonth reports whether key falls in the given month of year. Malformed
// keys are never in any month.
func InMonth(key string, year int, month time.Month) bool {
	t, err := Parse(key, time.UTC)
	if err != nil {
		return false
	}
	return t.Year() == year && t.Month() == month
}

// ParseMonth reads a YYYY-MM month selector.
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("month must be in YYYY-MM form: %q", s)
	}
	return t.Year(), t.Month(), nil
}
