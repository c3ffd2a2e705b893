package logger

import (
	"io"
	"log/slog"
	"os"
)

// Config holds logger configuration.
type Config struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Sentry SentryConfig
}

// New creates a JSON logger writing to stdout.
// Records below cfg.Level are dropped. If cfg.Sentry.DSN is set,
// warnings and above are forwarded to Sentry as well.
func New(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	return slog.New(WithExtractors(newHandler(os.Stdout, cfg), extractors...))
}

// NewNope returns a logger that discards all output.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHandler(w io.Writer, cfg Config) slog.Handler {
	base := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       ParseLevel(cfg.Level),
		ReplaceAttr: replaceLevel,
	})

	sentryHandler, ok := newSentryHandler(cfg.Sentry, base)
	if !ok {
		return base
	}
	return fanoutHandler{base, sentryHandler}
}
