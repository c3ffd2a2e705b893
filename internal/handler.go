package internal

// Handler declares routes on a router.
//
// Example:
//
//	type TemplatesHandler struct {
//	    svc *templates.Service
//	}
//
//	func (h *TemplatesHandler) Routes(r mailcraft.Router) {
//	    r.GET("/api/templates", h.list)
//	    r.POST("/api/templates", h.save)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// Returning a non-nil error hands it to the app's ErrorHandler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
// Middleware can inspect the request, short-circuit processing
// or wrap the response.
//
// Example:
//
//	func RequireJSON(next mailcraft.HandlerFunc) mailcraft.HandlerFunc {
//	    return func(c mailcraft.Context) error {
//	        if !strings.HasPrefix(c.Header("Content-Type"), "application/json") {
//	            return mailcraft.ErrBadRequest("expected JSON body")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler renders errors returned from handlers.
type ErrorHandler func(Context, error) error
