package google

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

func TestTargetRow(t *testing.T) {
	june := sheets.Summary{Window: core.Window{Month: 6, Year: 2024}, UserID: "u1"}
	values := [][]any{
		summaryHeader,
		{"2024-05", "u1", "a@example.com", "1.00", "2.00", "-1.00", 2, ""},
		{"2024-06", "u2", "b@example.com", "1.00", "0.00", "1.00", 1, ""},
		{"2024-06", "u1", "a@example.com", "3.00", "0.00", "3.00", 1, ""},
	}

	tests := []struct {
		name       string
		values     [][]any
		wantRow    int
		wantHeader bool
	}{
		{"empty sheet", nil, 2, true},
		{"existing row", values, 4, false},
		{"new row", values[:3], 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, header := targetRow(tt.values, june)
			if row != tt.wantRow || header != tt.wantHeader {
				t.Fatalf("targetRow = %d, %v; want %d, %v", row, header, tt.wantRow, tt.wantHeader)
			}
		})
	}
}

func TestParseSummaries(t *testing.T) {
	values := [][]any{
		summaryHeader,
		{"2024-06", "u1", "a@example.com", "500.00", "12.50", "487.50", 2, "2024-07-01T00:00:00Z"},
		{"2024-05", "u1", "a@example.com", "0,00", "20,10", "-20,10", "1", ""},
		{"garbage"},
		{"2024-13", "u1", "", "0", "0", "0", 0, ""},
		{"2024-04", "u1", "", "abc", "0", "0", 0, ""},
	}

	got := parseSummaries(values)
	if len(got) != 2 {
		t.Fatalf("parsed %d rows, want 2: %+v", len(got), got)
	}
	if got[0].Window != (core.Window{Month: 6, Year: 2024}) || !got[0].Balance.Equal(decimal.RequireFromString("487.5")) {
		t.Errorf("first row = %+v", got[0])
	}
	if !got[0].ExportedAt.Equal(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ExportedAt = %v", got[0].ExportedAt)
	}
	if !got[1].Balance.Equal(decimal.RequireFromString("-20.1")) || got[1].Count != 1 {
		t.Errorf("second row = %+v", got[1])
	}
}

func TestSummaryValuesRoundTrip(t *testing.T) {
	s := sheets.Summary{
		Window:     core.Window{Month: 6, Year: 2024},
		UserID:     "u1",
		Email:      "a@example.com",
		Income:     decimal.RequireFromString("500"),
		Expense:    decimal.RequireFromString("12.5"),
		Balance:    decimal.RequireFromString("487.5"),
		Count:      2,
		ExportedAt: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	}

	row := summaryValues(s)
	if row[3] != "500.00" || row[5] != "487.50" {
		t.Fatalf("amounts not fixed to cents: %v", row)
	}

	back := parseSummaries([][]any{row})
	if len(back) != 1 || !back[0].Same(s) {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Reports", 2024, "2024 Reports"},
		{" Reports ", 2025, "2025 Reports"},
		{"2023 Reports", 2025, "2023 Reports"},
		{"", 2024, ""},
	}
	for _, tt := range tests {
		if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
		}
	}
}

func TestNew_RequiresSpreadsheetAndCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	if _, err := New(context.Background(), "", "Reports"); err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if _, err := New(context.Background(), "sheet-id", "Reports"); err == nil {
		t.Fatal("expected error for missing credentials")
	}

	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "/nonexistent/creds.json")
	if _, err := New(context.Background(), "sheet-id", "Reports"); err == nil {
		t.Fatal("expected error for unreadable credentials file")
	}
}

func TestClient_NilService(t *testing.T) {
	c := &Client{spreadsheetID: "x", sheetBase: "Reports"}
	if err := c.ExportSummary(context.Background(), sheets.Summary{}); err == nil {
		t.Fatal("expected error with nil service")
	}
	if _, err := c.ReadSummaries(context.Background(), 2024); err == nil {
		t.Fatal("expected error with nil service")
	}
}
