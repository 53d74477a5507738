// Package worker reacts to ledger events and exports report summaries.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
	"fintrack/internal/store"
)

// LedgerWorker keeps budget spent in step with the ledger and mirrors
// monthly summaries to the configured exporter.
type LedgerWorker struct {
	budgets  *services.BudgetService
	reports  *services.ReportService
	users    store.UserStore
	exporter sheets.ReportExporter
	now      func() time.Time
	logger   *log.Logger
}

// NewLedgerWorker wires the worker. exporter may be nil to disable exports.
func NewLedgerWorker(budgets *services.BudgetService, reports *services.ReportService, users store.UserStore, exporter sheets.ReportExporter) *LedgerWorker {
	return &LedgerWorker{
		budgets:  budgets,
		reports:  reports,
		users:    users,
		exporter: exporter,
		now:      time.Now,
		logger:   log.Default(log.ComponentWorker),
	}
}

// HandleLedgerEvent recomputes the budget of every window the event touched
// and refreshes the exported summary for them. Income writes leave budgets
// alone.
func (w *LedgerWorker) HandleLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	windows := ev.CoreWindows()

	w.logger.DebugContext(ctx, "Processing ledger event",
		"op", ev.Op,
		"kind", ev.Kind,
		log.FieldUserID, ev.UserID,
		log.FieldRecordID, ev.RecordID,
		"windows", len(windows))

	var errs []error
	for _, win := range windows {
		fields := log.NewFields().WithUser(ev.UserID).WithWindow(win.Month, win.Year)
		if ev.Kind == core.KindExpense {
			if _, err := w.budgets.RecomputeSpent(ctx, ev.UserID, win); err != nil {
				w.logger.WarnContext(ctx, "Budget recompute failed", fields.WithError(err).ToSlice()...)
				errs = append(errs, fmt.Errorf("recompute %s: %w", win, err))
				continue
			}
		}
		if err := w.exportUser(ctx, ev.UserID, win); err != nil {
			w.logger.WarnContext(ctx, "Summary export failed", fields.WithError(err).ToSlice()...)
			errs = append(errs, fmt.Errorf("export %s: %w", win, err))
		}
	}
	return errors.Join(errs...)
}

func (w *LedgerWorker) exportUser(ctx context.Context, userID string, win core.Window) error {
	if w.exporter == nil {
		return nil
	}
	u, err := w.users.GetUser(ctx, userID)
	if errors.Is(err, core.ErrNotFound) {
		// Account deleted after the event was queued.
		return nil
	}
	if err != nil {
		return err
	}
	s, err := w.summarize(ctx, u, win)
	if err != nil {
		return err
	}
	return w.exporter.ExportSummary(ctx, s)
}

func (w *LedgerWorker) summarize(ctx context.Context, u core.User, win core.Window) (sheets.Summary, error) {
	r, err := w.reports.GenerateMonthlyReport(ctx, core.Session{UserID: u.ID, Email: u.Email}, win)
	if err != nil {
		return sheets.Summary{}, err
	}
	return sheets.SummaryOf(u, r, w.now()), nil
}

// ExportAll writes the summary of win for every user whose figures changed
// since the last export and returns how many rows were written.
func (w *LedgerWorker) ExportAll(ctx context.Context, win core.Window) (int, error) {
	if w.exporter == nil {
		return 0, nil
	}

	users, err := w.users.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	existing, err := w.exporter.ReadSummaries(ctx, win.Year)
	if err != nil {
		return 0, fmt.Errorf("read exported summaries: %w", err)
	}
	previous := make(map[string]sheets.Summary, len(existing))
	for _, s := range existing {
		previous[s.Key()] = s
	}

	exported := 0
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return exported, err
		}
		s, err := w.summarize(ctx, u, win)
		if err != nil {
			w.logger.ErrorContext(ctx, "Failed to build summary", log.FieldUserID, u.ID, log.FieldError, err)
			continue
		}
		if prev, ok := previous[s.Key()]; ok && prev.Same(s) {
			continue
		}
		if err := w.exporter.ExportSummary(ctx, s); err != nil {
			return exported, fmt.Errorf("export %s: %w", s.Key(), err)
		}
		exported++
	}

	w.logger.InfoContext(ctx, "Exported report summaries",
		"window", win.String(),
		"exported", exported,
		"users", len(users))
	return exported, nil
}

// InlinePublisher hands ledger events straight to a worker in-process. It
// stands in for the broker when AMQP is not configured.
type InlinePublisher struct {
	Worker *LedgerWorker
}

func (p InlinePublisher) PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	return p.Worker.HandleLedgerEvent(ctx, ev)
}

var _ services.EventPublisher = InlinePublisher{}
