package internal

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/mailcraft/pkg/health"
	"github.com/dmitrymomot/mailcraft/pkg/job"
	"github.com/dmitrymomot/mailcraft/pkg/logger"
	"github.com/dmitrymomot/mailcraft/pkg/metrics"
)

// App orchestrates the application lifecycle.
// It manages HTTP routing, middleware, background jobs and graceful shutdown.
// App is immutable after creation; all configuration is done via New().
type App struct {
	router                  chi.Router
	errorHandler            ErrorHandler
	notFoundHandler         HandlerFunc
	methodNotAllowedHandler HandlerFunc
	healthConfig            *healthConfig
	logger                  *slog.Logger
	metrics                 *metrics.Metrics
	jobs                    *job.Manager
	rootMiddlewares         []Middleware
	middlewares             []Middleware
	handlers                []Handler
}

// New creates a new application with the given options.
//
// Example:
//
//	app := mailcraft.New(
//	    mailcraft.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    mailcraft.WithHandlers(handlers.NewTemplates(svc)),
//	)
func New(opts ...Option) *App {
	a := &App{
		router: chi.NewRouter(),
		logger: logger.NewNope(),
	}

	for _, opt := range opts {
		opt(a)
	}

	a.setupRoutes()
	return a
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Router returns the underlying chi.Router.
func (a *App) Router() chi.Router {
	return a.router
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Run starts the HTTP server and blocks until shutdown.
// When a job manager is configured it is started before the listener
// and stopped after the HTTP server has drained.
func (a *App) Run(opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	if a.jobs != nil {
		cfg.startupHooks = append([]func(context.Context) error{a.jobs.StartFunc()}, cfg.startupHooks...)
		cfg.shutdownHooks = append([]func(context.Context) error{a.jobs.Shutdown()}, cfg.shutdownHooks...)
	}

	return runServer(runtimeConfig{handler: a.router, runConfig: cfg})
}

// setupRoutes configures the router with middleware and handlers.
func (a *App) setupRoutes() {
	for _, mw := range a.rootMiddlewares {
		a.router.Use(a.adaptMiddleware(mw))
	}

	if a.notFoundHandler != nil {
		a.router.NotFound(a.wrapHandler(a.notFoundHandler))
	}
	if a.methodNotAllowedHandler != nil {
		a.router.MethodNotAllowed(a.wrapHandler(a.methodNotAllowedHandler))
	}

	// Probes and metrics bypass app middleware.
	if a.healthConfig != nil {
		checks := a.healthConfig.checks
		if a.jobs != nil {
			checks[jobsCheckName] = job.Healthcheck(a.jobs)
		}
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath, health.ReadinessHandler(checks, health.WithLogger(a.logger)))
	}
	if a.metrics != nil {
		a.router.Method(http.MethodGet, metricsPath, a.metrics.Handler())
	}

	a.router.Group(func(cr chi.Router) {
		for _, mw := range a.middlewares {
			cr.Use(a.adaptMiddleware(mw))
		}

		r := &routerAdapter{router: cr, app: a}
		for _, h := range a.handlers {
			h.Routes(r)
		}
	})
}

// wrapHandler converts a HandlerFunc to http.HandlerFunc using the app's error handler.
func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a.logger)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
	}
}

// handleError renders err unless the response has already started.
func (a *App) handleError(c Context, err error) {
	if c.Written() {
		c.LogWarn("error after response was written", slog.Any("error", err))
		return
	}
	if a.errorHandler != nil {
		if herr := a.errorHandler(c, err); herr != nil {
			c.LogError("error handler failed", slog.Any("error", herr))
		}
		return
	}
	if herr := AsHTTPError(err); herr != nil {
		http.Error(c.Response(), herr.Message, herr.StatusCode())
		return
	}
	c.LogError("unhandled error", slog.Any("error", err))
	http.Error(c.Response(), http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
	metricsPath          = "/metrics"
	jobsCheckName        = "jobs"
)

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
//
// Example:
//
//	mailcraft.WithReadinessCheck("db", db.Healthcheck(pool))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if name != "" && fn != nil {
			c.checks[name] = fn
		}
	}
}
