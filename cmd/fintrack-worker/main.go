package main

import (
	"context"
	"errors"
	"os"
	"time"

	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting fintrack-worker", log.FieldOperation, log.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.DataBackend == "memory" {
		logger.Warn("Worker uses its own memory store; budgets it recomputes are not shared with the server")
	}

	ctx := context.Background()
	be := cli.InitBackend(ctx, logger, cfg, true)
	st := be.Store

	var exporter sheets.ReportExporter
	if cfg.ExportEnabled() {
		gs, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets exporter", log.FieldError, err)
			os.Exit(1)
		}
		exporter = gs
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	budgets := services.NewBudgetService(st, st, logger.WithComponent(log.ComponentBudget))
	reports := services.NewReportService(st, logger.WithComponent(log.ComponentReport))
	lw := worker.NewLedgerWorker(budgets, reports, st, exporter)

	var scheduler *worker.Scheduler
	if exporter != nil {
		scheduler = worker.NewScheduler(lw, cfg.ExportInterval)
	}

	runCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if scheduler != nil {
			_ = scheduler.Stop(ctx)
		}
	})

	if scheduler != nil {
		if err := scheduler.Start(runCtx); err != nil {
			logger.Error("Failed to start export scheduler", log.FieldError, err)
		}
	}

	err := be.AMQP.ConsumeLedgerEvents(runCtx, lw.HandleLedgerEvent)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Ledger event consumption failed", log.FieldError, err, log.FieldOperation, log.OpConsume)
	}

	cli.WaitForShutdown(runCtx, done)
	if err := be.Cleanup(); err != nil {
		logger.Error("Backend cleanup error", log.FieldError, err)
	}
	logger.Info("Worker shutdown complete")
}
