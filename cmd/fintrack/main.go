package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/cli"
	"fintrack/internal/core"
	apphttp "fintrack/internal/http"
	"fintrack/internal/identity"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	be := cli.InitBackend(ctx, logger, cfg, false)
	st := be.Store

	budgets := services.NewBudgetService(st, st, logger.WithComponent(log.ComponentBudget))
	reports := services.NewReportService(st, logger.WithComponent(log.ComponentReport))

	// Without a broker the ledger worker runs in-process.
	var (
		publisher services.EventPublisher
		scheduler *worker.Scheduler
	)
	if be.AMQP != nil {
		publisher = be.AMQP
	} else {
		var exporter sheets.ReportExporter
		if cfg.ExportEnabled() {
			gs, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
			if err != nil {
				logger.Error("Failed to initialize Google Sheets exporter", log.FieldError, err)
				os.Exit(1)
			}
			exporter = gs
		}
		lw := worker.NewLedgerWorker(budgets, reports, st, exporter)
		publisher = worker.InlinePublisher{Worker: lw}
		if exporter != nil {
			scheduler = worker.NewScheduler(lw, cfg.ExportInterval)
		}
		logger.Info("No AMQP broker configured, processing ledger events in-process")
	}

	provider := identity.NewProvider(st, cfg.SessionTTL, cfg.SessionCacheSize,
		identity.WithLogger(logger.WithComponent(log.ComponentIdentity)))
	limiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute})

	janitor := cache.NewJanitor(logger)
	janitor.Register(provider.Sessions())
	janitor.Register(limiter)
	janitor.Start(5 * time.Minute)

	events, unsubscribe := provider.Subscribe()
	go logSessionEvents(logger.WithComponent(log.ComponentIdentity), events)

	var ready apphttp.Pinger
	if p, ok := st.(apphttp.Pinger); ok {
		ready = p
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Identity:   provider,
		Reports:    reports,
		Budgets:    budgets,
		Expenses:   services.NewLedgerService(core.KindExpense, st, publisher, logger.WithComponent(log.ComponentLedger)),
		Income:     services.NewLedgerService(core.KindIncome, st, publisher, logger.WithComponent(log.ComponentLedger)),
		Categories: services.NewCategoryService(st, logger.WithComponent(log.ComponentCategory)),
		Limiter:    limiter,
		Ready:      ready,
		Logger:     logger.WithComponent(log.ComponentHTTP),
	})

	runCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if scheduler != nil {
			_ = scheduler.Stop(ctx)
		}
		unsubscribe()
		janitor.Stop()
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	if scheduler != nil {
		if err := scheduler.Start(runCtx); err != nil {
			logger.Error("Failed to start export scheduler", log.FieldError, err)
		}
	}

	logger.Info("Starting fintrack server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"amqp", be.AMQP != nil,
		log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(runCtx, done)
	logger.Info("Server stopped gracefully")
}

func logSessionEvents(logger *log.Logger, events <-chan identity.Event) {
	for ev := range events {
		logger.Debug("Session event",
			"type", string(ev.Type),
			log.FieldUserID, ev.Session.UserID,
			"at", ev.At.Format(time.RFC3339))
	}
}
