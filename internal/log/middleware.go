package log

import (
	"context"
	"log/slog"
	"net/http"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// Middleware creates HTTP middleware that adds a logger to the request context
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := NewContext(r.Context(), logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewContext stores logger in ctx.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts a logger from the request context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// RequestIDMiddleware adds request ID to logger context
func RequestIDMiddleware(extractRequestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := extractRequestID(r)
			logger := FromContext(r.Context()).With(FieldRequestID, requestID)
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), logger)))
		})
	}
}

// StructuredLogger provides domain-specific log helpers over a Logger.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogStoreFailure logs a failed store call before it is returned to the caller.
func (sl *StructuredLogger) LogStoreFailure(ctx context.Context, op, collection, userID string, err error) {
	fields := NewFields().
		WithOperation(op).
		WithRecord(collection, "").
		WithError(err)
	if userID != "" {
		fields.WithUser(userID)
	}
	sl.logger.ErrorContext(ctx, "Store operation failed", fields.ToSlice()...)
}

// LogTransactionCreated logs a successful ledger write.
func (sl *StructuredLogger) LogTransactionCreated(ctx context.Context, id, userID, kind, amount, category string) {
	fields := NewFields().
		WithTransaction(kind, amount, category).
		WithUser(userID).
		WithRecord(kind, id).
		WithOperation(OpCreate)
	sl.logger.InfoContext(ctx, "Ledger record created", fields.ToSlice()...)
}

// LogSpentRecomputed logs a budget whose spent changed after a ledger write.
func (sl *StructuredLogger) LogSpentRecomputed(ctx context.Context, budgetID, userID string, month, year int, spent string) {
	fields := NewFields().
		WithRecord("budgets", budgetID).
		WithUser(userID).
		WithWindow(month, year)
	fields[FieldAmount] = spent
	sl.logger.InfoContext(ctx, "Budget spent recomputed", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation)
	sl.logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}

// Logger returns the wrapped component logger.
func (sl *StructuredLogger) Logger() *Logger {
	return sl.logger
}
