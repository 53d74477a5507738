package core

import (
	"testing"
	"time"
)

func TestWindowRange(t *testing.T) {
	start, end := Window{Month: 6, Year: 2024}.Range()
	if !start.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v", start)
	}
	if !end.Equal(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end %v", end)
	}

	start, end = Window{Month: 12, Year: 2024}.Range()
	if end.Year() != 2025 || end.Month() != time.January {
		t.Fatalf("december should roll over, got %v..%v", start, end)
	}
}

func TestWindowInvalidRangeIsEmpty(t *testing.T) {
	for _, w := range []Window{{Month: 0, Year: 2024}, {Month: 13, Year: 2024}, {Month: 1, Year: 0}} {
		start, end := w.Range()
		if !start.Equal(end) {
			t.Fatalf("%v expected empty range, got %v..%v", w, start, end)
		}
		if w.Contains(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("%v should contain nothing", w)
		}
	}
}

func TestWindowContainsLastDay(t *testing.T) {
	w := Window{Month: 2, Year: 2024}
	if !w.Contains(time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("last instant of the month must be inside the window")
	}
	if w.Contains(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("first instant of next month must be outside the window")
	}
}

func TestCurrentWindow(t *testing.T) {
	w := CurrentWindow(time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC))
	if w != (Window{Month: 10, Year: 2026}) || w.String() != "2026-10" {
		t.Fatalf("unexpected window %v", w)
	}
}
