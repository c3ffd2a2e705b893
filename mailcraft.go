package mailcraft

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mailcraft/internal"
	"github.com/dmitrymomot/mailcraft/pkg/health"
	"github.com/dmitrymomot/mailcraft/pkg/job"
	"github.com/dmitrymomot/mailcraft/pkg/metrics"
)

// Type aliases - public API
type (
	// App orchestrates the application lifecycle.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler renders errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// HTTPError is an error rendered with a specific status code.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// ResponseWriter records the status and size of the response.
	ResponseWriter = internal.ResponseWriter

	// Extractor tries multiple request sources in order.
	Extractor = internal.Extractor

	// ExtractorSource reads one value from the request.
	ExtractorSource = internal.ExtractorSource
)

// Constructors

// New creates a new application with the given options.
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// App options

func WithMiddleware(mw ...Middleware) Option { return internal.WithMiddleware(mw...) }

// WithRootMiddleware adds middleware that runs before routing.
func WithRootMiddleware(mw ...Middleware) Option { return internal.WithRootMiddleware(mw...) }

func WithHandlers(h ...Handler) Option { return internal.WithHandlers(h...) }

func WithErrorHandler(h ErrorHandler) Option { return internal.WithErrorHandler(h) }

func WithNotFoundHandler(h HandlerFunc) Option { return internal.WithNotFoundHandler(h) }

func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return internal.WithMethodNotAllowedHandler(h)
}

// WithHealthChecks enables /health/live and /health/ready.
func WithHealthChecks(opts ...HealthOption) Option { return internal.WithHealthChecks(opts...) }

func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

func WithLivenessPath(path string) HealthOption { return internal.WithLivenessPath(path) }

func WithReadinessPath(path string) HealthOption { return internal.WithReadinessPath(path) }

func WithLogger(l *slog.Logger) Option { return internal.WithLogger(l) }

// WithMetrics exposes the Prometheus registry at /metrics.
func WithMetrics(m *metrics.Metrics) Option { return internal.WithMetrics(m) }

// WithJobs attaches the River job manager to the app lifecycle.
func WithJobs(m *job.Manager) Option { return internal.WithJobs(m) }

// Run options

func Address(addr string) RunOption { return internal.Address(addr) }

func Logger(l *slog.Logger) RunOption { return internal.Logger(l) }

func ShutdownTimeout(d time.Duration) RunOption { return internal.ShutdownTimeout(d) }

func StartupHook(fn func(context.Context) error) RunOption { return internal.StartupHook(fn) }

func ShutdownHook(fn func(context.Context) error) RunOption { return internal.ShutdownHook(fn) }

func WithContext(ctx context.Context) RunOption { return internal.WithContext(ctx) }

// Errors

func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnauthorized(message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

func ErrUnprocessable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnprocessable(message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

func ErrBadGateway(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadGateway(message, opts...)
}

func WithError(err error) HTTPErrorOption { return internal.WithError(err) }

func WithFields(fields map[string][]string) HTTPErrorOption { return internal.WithFields(fields) }

func WithDetails(details any) HTTPErrorOption { return internal.WithDetails(details) }

func WithRequestID(id string) HTTPErrorOption { return internal.WithRequestID(id) }

// AsHTTPError returns the first HTTPError in err's chain, or nil.
func AsHTTPError(err error) *HTTPError { return internal.AsHTTPError(err) }

// ErrInvalidJSON is returned by Context.BindJSON for malformed bodies.
var ErrInvalidJSON = internal.ErrInvalidJSON

// Helpers

// ContextValue returns the request-scoped value stored under key.
func ContextValue[T any](c Context, key any) T { return internal.ContextValue[T](c, key) }

// UUIDParam parses a URL parameter as a UUID.
func UUIDParam(c Context, name string) (uuid.UUID, bool) { return internal.UUIDParam(c, name) }

func NewExtractor(sources ...ExtractorSource) Extractor { return internal.NewExtractor(sources...) }

func FromHeader(name string) ExtractorSource { return internal.FromHeader(name) }

func FromQuery(name string) ExtractorSource { return internal.FromQuery(name) }

func FromParam(name string) ExtractorSource { return internal.FromParam(name) }

func FromBearerToken() ExtractorSource { return internal.FromBearerToken() }
