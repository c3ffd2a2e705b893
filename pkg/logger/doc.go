// Package logger builds the service's log/slog loggers.
//
// Every logger writes JSON to stdout and enriches records with request-scoped
// attributes pulled from the context by ContextExtractor functions (request ID,
// user ID). When a Sentry DSN is configured, error and critical records are
// also reported to Sentry.
//
// # Levels
//
// In addition to the slog levels, the package defines LevelCritical for
// failures that need operator attention but must not interrupt the process,
// such as a delivery task that exhausted all of its retries:
//
//	logger.Critical(ctx, log, "delivery failed after all attempts",
//		slog.String("recipient", to),
//		slog.Any("error", err),
//	)
//
// Critical records render as "CRITICAL" and always become Sentry events.
//
// # Usage
//
//	log := logger.New(logger.Config{Level: "info"}, middlewares.RequestIDExtractor())
//	log.InfoContext(ctx, "template saved", slog.String("template_id", id))
//
// For tests use NewNope, which discards everything.
package logger
