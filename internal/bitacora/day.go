// Package bitacora holds the pure rules of the daily work log: which calendar day a
// timestamp belongs to, how a day is rendered into its official BESOP text, and how
// sealed content and PINs are hashed.
package bitacora

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar date format accepted on every interface
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned for anything that is not a YYYY-MM-DD calendar date
var ErrInvalidDate = errors.New("fecha inválida, se espera el formato AAAA-MM-DD")

// Calendar buckets timestamps into calendar days of a single reference timezone.
// Every query that talks about "a day" (view, lock, closure key, entry creation)
// goes through the same Calendar so the boundaries never disagree.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// NewCalendar creates a calendar in loc (UTC when nil)
func NewCalendar(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{loc: loc, now: time.Now}
}

// WithClock returns a copy of the calendar using now as its clock
func (c *Calendar) WithClock(now func() time.Time) *Calendar {
	return &Calendar{loc: c.loc, now: now}
}

// Location returns the reference timezone
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Now returns the current instant in UTC, truncated to microseconds (PostgreSQL precision)
func (c *Calendar) Now() time.Time {
	return c.now().UTC().Truncate(time.Microsecond)
}

// DayWindow is the half-open interval [Start, End) of one calendar day, in UTC
type DayWindow struct {
	Date  string
	Start time.Time
	End   time.Time
}

// Parse validates a YYYY-MM-DD string and returns its window
func (c *Calendar) Parse(date string) (DayWindow, error) {
	d, err := time.ParseInLocation(DateLayout, date, c.loc)
	if err != nil {
		return DayWindow{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return c.windowFor(d.Year(), d.Month(), d.Day()), nil
}

// WindowOf returns the window of the day that contains t
func (c *Calendar) WindowOf(t time.Time) DayWindow {
	local := t.In(c.loc)
	return c.windowFor(local.Year(), local.Month(), local.Day())
}

// Today returns the window of the current day
func (c *Calendar) Today() DayWindow {
	return c.WindowOf(c.now())
}

func (c *Calendar) windowFor(y int, m time.Month, d int) DayWindow {
	start := time.Date(y, m, d, 0, 0, 0, 0, c.loc)
	// normalising d+1 through time.Date keeps DST days at 23 or 25 hours
	end := time.Date(y, m, d+1, 0, 0, 0, 0, c.loc)
	return DayWindow{
		Date:  start.Format(DateLayout),
		Start: start.UTC(),
		End:   end.UTC(),
	}
}

// Contains reports whether t falls inside [Start, End)
func (w DayWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Key returns the closure-date key: midnight UTC of the calendar date
func (w DayWindow) Key() time.Time {
	d, _ := time.Parse(DateLayout, w.Date)
	return d
}

// IsFuture reports whether the whole day lies after now
func (w DayWindow) IsFuture(now time.Time) bool {
	return now.Before(w.Start)
}

// At returns the instant inside the window with the same wall-clock time as now,
// clamped to the window. Used to timestamp late (back-dated) entries.
func (c *Calendar) At(w DayWindow, now time.Time) time.Time {
	if w.Contains(now) {
		return now.UTC()
	}
	local := now.In(c.loc)
	start := w.Start.In(c.loc)
	t := time.Date(start.Year(), start.Month(), start.Day(),
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), c.loc).UTC()
	if t.Before(w.Start) {
		return w.Start
	}
	if !t.Before(w.End) {
		return w.End.Add(-time.Second)
	}
	return t.Truncate(time.Microsecond)
}
