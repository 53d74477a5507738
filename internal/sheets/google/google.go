package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/log"
	"fintrack/internal/sheets"
)

// Client writes report summaries to a yearly sheet ("2024 Reports") of one
// spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
	logger        *log.Logger
}

var _ sheets.ReportExporter = (*Client)(nil)

// New builds a client from the credentials in the environment: a saved OAuth
// user token (see cmd/fintrack-sheets-auth) or a service account from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, spreadsheetID, sheetBase string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if strings.TrimSpace(sheetBase) == "" {
		sheetBase = "Reports"
	}

	opts, err := clientOptionsFromEnv(ctx)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	logger := log.Default(log.ComponentSheets)
	logger.InfoContext(ctx, "Google Sheets exporter ready", "sheet", sheetBase)

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     strings.TrimSpace(sheetBase),
		logger:        logger,
	}, nil
}

func credentialsFromEnv() ([]byte, error) {
	inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// ExportSummary upserts the row for (window, user) in the year's sheet.
func (c *Client) ExportSummary(ctx context.Context, s sheets.Summary) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	sheet := yearPrefixedName(c.sheetBase, s.Window.Year)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, sheet+"!A:H").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", sheet, err)
	}

	row, header := targetRow(resp.Values, s)
	if header {
		hdr := &gsheet.ValueRange{Values: [][]any{summaryHeader}}
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, sheet+"!A1:H1", hdr).
			ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return fmt.Errorf("write header in %s: %w", sheet, err)
		}
	}

	rng := fmt.Sprintf("%s!A%d:H%d", sheet, row, row)
	vr := &gsheet.ValueRange{Values: [][]any{summaryValues(s)}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write %s: %w", rng, err)
	}

	c.logger.DebugContext(ctx, "Exported report summary",
		"range", rng,
		"window", s.Window.String(),
		log.FieldUserID, s.UserID)
	return nil
}

func (c *Client) ReadSummaries(ctx context.Context, year int) ([]sheets.Summary, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	sheet := yearPrefixedName(c.sheetBase, year)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, sheet+"!A:H").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sheet, err)
	}
	return parseSummaries(resp.Values), nil
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a
// 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}

func summaryValues(s sheets.Summary) []any {
	return []any{
		s.Window.String(),
		s.UserID,
		s.Email,
		s.Income.StringFixed(2),
		s.Expense.StringFixed(2),
		s.Balance.StringFixed(2),
		s.Count,
		s.ExportedAt.Format(time.RFC3339),
	}
}
