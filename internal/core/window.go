package core

import (
	"fmt"
	"time"
)

// Window identifies an aggregation period by calendar month and year.
type Window struct {
	Month int
	Year  int
}

// CurrentWindow returns the window containing now. Callers compute it once at
// the boundary and pass it down.
func CurrentWindow(now time.Time) Window {
	return Window{Month: int(now.Month()), Year: now.Year()}
}

// Valid reports whether the month is in [1,12] and the year is positive.
func (w Window) Valid() bool {
	return w.Month >= 1 && w.Month <= 12 && w.Year > 0
}

// Range returns the half-open UTC interval [first day of month, first day of
// next month), which covers every instant of the last day. Invalid windows
// yield an empty range so range queries return nothing instead of failing.
func (w Window) Range() (start, end time.Time) {
	if !w.Valid() {
		return time.Time{}, time.Time{}
	}
	start = time.Date(w.Year, time.Month(w.Month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	start, end := w.Range()
	t = t.UTC()
	return !t.Before(start) && t.Before(end)
}

func (w Window) String() string {
	return fmt.Sprintf("%04d-%02d", w.Year, w.Month)
}

// WindowOf returns the window a date belongs to.
func WindowOf(t time.Time) Window {
	return CurrentWindow(t.UTC())
}
