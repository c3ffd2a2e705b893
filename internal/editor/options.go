package editor

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/mailcraft/pkg/cache"
)

// Option configures an Editor.
type Option func(*Editor)

// WithHTTPClient sets the client used for token exchange and document fetches.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Editor) {
		if c != nil {
			e.httpClient = c
		}
	}
}

// WithDocumentCache sets where the base document is cached.
// Defaults to an in-process cache.
func WithDocumentCache(c cache.Cache[json.RawMessage]) Option {
	return func(e *Editor) {
		if c != nil {
			e.documents = c
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTemplates enables opening saved templates in Session.
func WithTemplates(src TemplateSource) Option {
	return func(e *Editor) {
		e.templates = src
	}
}

// WithClock overrides the time source used for token expiry.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) {
		if now != nil {
			e.now = now
		}
	}
}
