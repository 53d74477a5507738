// Package services holds the application services that sit between the
// transport layer and the stores.
package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// ReportService aggregates a user's ledger into monthly reports.
type ReportService struct {
	ledger store.TransactionStore
	log    *log.StructuredLogger
}

func NewReportService(ledger store.TransactionStore, logger *log.Logger) *ReportService {
	if logger == nil {
		logger = log.Default(log.ComponentReport)
	}
	return &ReportService{ledger: ledger, log: log.NewStructuredLogger(logger)}
}

// GenerateMonthlyReport fetches both collections for w in parallel and
// merges them. The window is not validated: an out-of-range month yields an
// empty report. If either fetch fails the call fails and no partial report
// is returned.
func (s *ReportService) GenerateMonthlyReport(ctx context.Context, sess core.Session, w core.Window) (core.Report, error) {
	if !sess.Valid() {
		return core.Report{}, core.ErrUnauthenticated
	}

	var expenses, incomes []core.Transaction

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.fetch(gctx, core.KindExpense, sess.UserID, w)
		return err
	})
	g.Go(func() error {
		var err error
		incomes, err = s.fetch(gctx, core.KindIncome, sess.UserID, w)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Report{}, err
	}

	return core.BuildReport(w, expenses, incomes), nil
}

func (s *ReportService) fetch(ctx context.Context, kind core.Kind, userID string, w core.Window) ([]core.Transaction, error) {
	ts, err := s.ledger.ListTransactions(ctx, kind, userID, &w)
	if err != nil {
		s.log.LogStoreFailure(ctx, log.OpReport, store.CollectionFor(kind), userID, err)
		return nil, fmt.Errorf("list %s for %s: %w", store.CollectionFor(kind), w, err)
	}
	return ts, nil
}
