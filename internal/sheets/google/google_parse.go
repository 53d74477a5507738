package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

var summaryHeader = []any{"Window", "User", "Email", "Income", "Expense", "Balance", "Transactions", "Exported At"}

// targetRow returns the 1-based row where s belongs: the row already holding
// its (window, user) key, or the first free row. header reports that the
// sheet is empty and needs its header written.
func targetRow(values [][]any, s sheets.Summary) (row int, header bool) {
	if len(values) == 0 {
		return 2, true
	}
	for i, r := range values {
		cols := toStrings(r)
		if safeGet(cols, 0) == s.Window.String() && safeGet(cols, 1) == s.UserID {
			return i + 1, false
		}
	}
	return len(values) + 1, false
}

// parseSummaries reads back exported rows, skipping the header and anything
// that does not parse.
func parseSummaries(values [][]any) []sheets.Summary {
	var out []sheets.Summary
	for i, r := range values {
		cols := toStrings(r)
		if i == 0 && strings.EqualFold(safeGet(cols, 0), "window") {
			continue
		}
		w, ok := parseWindow(safeGet(cols, 0))
		if !ok {
			continue
		}
		s := sheets.Summary{Window: w, UserID: safeGet(cols, 1), Email: safeGet(cols, 2)}
		var err error
		if s.Income, err = parseAmount(safeGet(cols, 3)); err != nil {
			continue
		}
		if s.Expense, err = parseAmount(safeGet(cols, 4)); err != nil {
			continue
		}
		if s.Balance, err = parseAmount(safeGet(cols, 5)); err != nil {
			continue
		}
		s.Count, _ = strconv.Atoi(safeGet(cols, 6))
		s.ExportedAt, _ = time.Parse(time.RFC3339, safeGet(cols, 7))
		out = append(out, s)
	}
	return out
}

func parseWindow(v string) (core.Window, bool) {
	var w core.Window
	if _, err := fmt.Sscanf(v, "%d-%d", &w.Year, &w.Month); err != nil || !w.Valid() {
		return core.Window{}, false
	}
	return w, true
}

// parseAmount accepts plain numbers and the comma-decimal form spreadsheets
// display in some locales.
func parseAmount(v string) (decimal.Decimal, error) {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "-") {
		d, err := core.ParseAmount(v[1:])
		return d.Neg(), err
	}
	return core.ParseAmount(v)
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
