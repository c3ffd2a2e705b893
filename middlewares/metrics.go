package middlewares

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/mailcraft/internal"
	"github.com/dmitrymomot/mailcraft/pkg/metrics"
)

// Metrics records request count, latency and in-flight requests, labelled
// by the matched route pattern. Register it as app middleware so the status
// written by the error handler is observed.
func Metrics(m *metrics.Metrics) internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			start := time.Now()
			done := m.RequestStarted()

			err := next(c)

			status := c.ResponseWriter().Status()
			if err != nil {
				status = http.StatusInternalServerError
				if herr := internal.AsHTTPError(err); herr != nil {
					status = herr.StatusCode()
				}
			}

			var route string
			if rctx := chi.RouteContext(c.Request().Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			done(c.Request().Method, route, status, time.Since(start))
			return err
		}
	}
}
