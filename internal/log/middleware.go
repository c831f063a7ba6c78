package log

import (
	"context"
	"log/slog"
	"net/http"
)

type ctxKey struct{}

// NewContext returns ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the request-scoped logger, or a default one tagged
// "unknown" when ctx carries none.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return logger
	}
	return newLogger(slog.Default(), "unknown")
}

// derive swaps the request logger for whatever fn returns.
func derive(fn func(*http.Request) *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), fn(r))))
		})
	}
}

// Middleware seeds every request context with logger.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return derive(func(*http.Request) *Logger { return logger })
}

// ComponentMiddleware retags the request logger with component.
func ComponentMiddleware(component string) func(http.Handler) http.Handler {
	return derive(func(r *http.Request) *Logger {
		return FromContext(r.Context()).WithComponent(component)
	})
}

// RequestIDMiddleware attaches the ID returned by requestID to the request
// logger. Empty IDs are not attached.
func RequestIDMiddleware(requestID func(*http.Request) string) func(http.Handler) http.Handler {
	return derive(func(r *http.Request) *Logger {
		logger := FromContext(r.Context())
		if id := requestID(r); id != "" {
			return logger.With(FieldRequestID, id)
		}
		return logger
	})
}

// StructuredLogger writes the dashboard's domain events with a fixed field set.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogDashboardRendered is emitted at debug level once per render or cache hit.
func (sl *StructuredLogger) LogDashboardRendered(ctx context.Context, start, end string, records int, cacheHit bool, durationMs int64) {
	args := NewFields().
		WithRange(start, end).
		WithOperation(OpRender).
		WithComponent(ComponentDashboard).
		ToSlice()
	args = append(args, FieldRecords, records, FieldCacheHit, cacheHit, FieldDuration, durationMs)
	sl.logger.DebugContext(ctx, "Dashboard rendered", args...)
}

func (sl *StructuredLogger) LogImportCompleted(ctx context.Context, importID, source string, records int, durationMs int64) {
	args := NewFields().
		WithDataset(source, records).
		WithOperation(OpImport).
		WithComponent(ComponentImport).
		ToSlice()
	args = append(args, FieldImportID, importID, FieldDuration, durationMs)
	sl.logger.InfoContext(ctx, "Dataset import completed", args...)
}

// LogError merges err, component and operation into fields and logs at error level.
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	sl.logger.ErrorContext(ctx, msg, fields.WithError(err).WithOperation(operation).WithComponent(component).ToSlice()...)
}
