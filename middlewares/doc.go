// Package middlewares provides the HTTP middleware of the mailcraft API.
//
// # Request ID
//
// RequestID tags each request with an ID, reusing X-Request-ID or
// X-Correlation-ID when the caller sends one. Pair it with
// RequestIDExtractor so every log record carries request_id:
//
//	log := logger.New(cfg.Log, middlewares.RequestIDExtractor(), identity.LogExtractor)
//
// # Recover
//
// Recover converts panics into *PanicError for the app error handler and
// logs them at critical level.
//
// # Identity
//
// Identity parses the bearer JWT issued by the identity provider and makes
// the principal available through identity.FromContext. When ownership is
// enforced the token is mandatory:
//
//	middlewares.Identity(jwtService, cfg.Templates.EnforceOwnership)
//
// # CORS and Metrics
//
// CORS serves preflight requests for the browser editor. Metrics feeds the
// Prometheus request counters exposed at /metrics.
package middlewares
