// Package internal provides the HTTP kernel of the mailcraft service.
//
// Import "github.com/dmitrymomot/mailcraft" instead, which re-exports the
// public API.
//
// # Core Types
//
//   - App: routing, middleware, health probes, metrics, the job manager and graceful shutdown
//   - Context: request/response access, JSON helpers and request-scoped logging
//   - Router: interface handlers use to declare routes
//   - Handler: implemented by types that declare routes on a router
//   - HandlerFunc: route handler returning an error
//   - Middleware: wraps handlers to add cross-cutting concerns
//   - ErrorHandler: renders errors returned from handlers
//   - HTTPError: an error carrying status, message, field errors and details
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed directly to services
// and repositories:
//
//	func (h *Templates) get(c mailcraft.Context) error {
//	    tpl, err := h.svc.Get(c, identity.FromContext(c), id)
//	    if err != nil {
//	        return err
//	    }
//	    return c.JSON(http.StatusOK, tpl)
//	}
//
// # Error Handling
//
// Handlers and middleware return errors instead of writing error responses.
// The ErrorHandler configured with WithErrorHandler maps them to HTTP
// responses. Without one, a plain 500 is written. Errors returned after the
// response has started are logged and dropped.
//
// # Server Runtime
//
//	err := app.Run(
//	    mailcraft.Address(":8080"),
//	    mailcraft.Logger(log),
//	    mailcraft.ShutdownHook(db.Shutdown(pool)),
//	)
//
// A job manager attached with WithJobs is started before the listener opens
// and stopped after in-flight requests drain.
package internal
