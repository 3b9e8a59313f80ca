package load

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// Calendar normalizes timestamps to the start of their day in one location.
// Grouping, cache keys and range iteration must all share the same Calendar
// or day keys will silently diverge.
type Calendar struct {
	loc *time.Location
}

// NewCalendar returns a Calendar for loc. A nil loc means UTC.
func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{loc: loc}
}

// Location returns the calendar's time zone.
func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// DayStart returns midnight of t's day in the calendar's location.
func (c Calendar) DayStart(t time.Time) time.Time {
	loc := c.Location()
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Next returns the start of the day after day. AddDate keeps this correct
// across DST transitions, where a day is not 24 hours long.
func (c Calendar) Next(day time.Time) time.Time {
	return c.DayStart(c.DayStart(day).AddDate(0, 0, 1))
}

// AddDays shifts day by n calendar days (n may be negative).
func (c Calendar) AddDays(day time.Time, n int) time.Time {
	return c.DayStart(c.DayStart(day).AddDate(0, 0, n))
}

// Days returns every day start from start to end inclusive.
func (c Calendar) Days(start, end time.Time) []time.Time {
	start, end = c.DayStart(start), c.DayStart(end)
	var days []time.Time
	for d := start; !d.After(end); d = c.Next(d) {
		days = append(days, d)
	}
	return days
}

// Key formats t's day as YYYY-MM-DD.
func (c Calendar) Key(t time.Time) string {
	return c.DayStart(t).Format(dayLayout)
}

// ParseDay parses a YYYY-MM-DD string as a day start in the calendar's location.
func (c Calendar) ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dayLayout, s, c.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return t, nil
}
