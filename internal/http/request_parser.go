package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

// decodeJSON reads a single JSON object into v, rejecting unknown fields and
// trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: body must hold a single JSON object", errBadRequest)
	}
	return nil
}

// amountField accepts an amount as a JSON string ("12,50") or number (12.5).
type amountField struct {
	decimal.Decimal
}

func (a *amountField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
	}
	d, err := core.ParseAmount(raw)
	if err != nil {
		return err
	}
	a.Decimal = d
	return nil
}

// required returns the parsed amount, or core.ErrInvalidAmount when the
// field was absent or null.
func (a *amountField) required() (decimal.Decimal, error) {
	if a == nil {
		return decimal.Zero, core.ErrInvalidAmount
	}
	return a.Decimal, nil
}

// parseDate accepts YYYY-MM-DD (midnight UTC) or RFC3339.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, core.ErrInvalidDate
	}
	return t.UTC(), nil
}

// parseWindow reads year and month from the query. When both are absent
// ok is false; a present but non-numeric value is an error. Out-of-range
// values are returned as-is.
func parseWindow(q url.Values) (w core.Window, ok bool, err error) {
	ys := strings.TrimSpace(q.Get("year"))
	ms := strings.TrimSpace(q.Get("month"))
	if ys == "" && ms == "" {
		return core.Window{}, false, nil
	}
	if ys == "" || ms == "" {
		return core.Window{}, false, fmt.Errorf("%w: year and month go together", errBadRequest)
	}
	if w.Year, err = strconv.Atoi(ys); err != nil {
		return core.Window{}, false, fmt.Errorf("%w: invalid year %q", errBadRequest, ys)
	}
	if w.Month, err = strconv.Atoi(ms); err != nil {
		return core.Window{}, false, fmt.Errorf("%w: invalid month %q", errBadRequest, ms)
	}
	return w, true, nil
}

// parseKind reads the optional ?kind= filter.
func parseKind(q url.Values) (*core.Kind, error) {
	v := q.Get("kind")
	if v == "" {
		return nil, nil
	}
	k, err := core.ParseKind(v)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// bearerToken extracts the session token from the Authorization header.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// sanitizeInput trims whitespace and drops control characters other than
// tab and newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
