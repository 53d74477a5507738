package memory

import (
	"context"
	"sort"
	"sync"

	"fintrack/internal/sheets"
)

// Exporter keeps exported summaries in memory. It backs the worker when no
// spreadsheet is configured and in tests.
type Exporter struct {
	mu   sync.Mutex
	rows map[string]sheets.Summary
}

var _ sheets.ReportExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{rows: make(map[string]sheets.Summary)}
}

func (e *Exporter) ExportSummary(_ context.Context, s sheets.Summary) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows[s.Key()] = s
	return nil
}

func (e *Exporter) ReadSummaries(_ context.Context, year int) ([]sheets.Summary, error) {
	var out []sheets.Summary
	for _, s := range e.Summaries() {
		if s.Window.Year == year {
			out = append(out, s)
		}
	}
	return out, nil
}

// Summaries returns the stored rows ordered by window then user.
func (e *Exporter) Summaries() []sheets.Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]sheets.Summary, 0, len(e.rows))
	for _, s := range e.rows {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}
