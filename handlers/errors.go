package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/mailcraft/internal"
	"github.com/dmitrymomot/mailcraft/internal/editor"
	"github.com/dmitrymomot/mailcraft/internal/templates"
	"github.com/dmitrymomot/mailcraft/middlewares"
	"github.com/dmitrymomot/mailcraft/pkg/validation"
)

type errorResponse struct {
	Errors    map[string][]string `json:"errors,omitempty"`
	Details   any                 `json:"details,omitempty"`
	Message   string              `json:"message"`
	RequestID string              `json:"request_id,omitempty"`
	Success   bool                `json:"success"`
}

// ErrorHandler renders handler and middleware errors as JSON envelopes.
// Server-side failures are logged; their cause never reaches the client.
func ErrorHandler(c internal.Context, err error) error {
	herr := toHTTPError(err)

	resp := errorResponse{
		Message: herr.Message,
		Errors:  herr.Fields,
		Details: herr.Details,
	}

	switch {
	case herr.Code == http.StatusBadGateway:
		c.LogWarn("upstream request failed", slog.Any("error", err))
	case herr.Code >= http.StatusInternalServerError:
		resp.RequestID = middlewares.GetRequestID(c)
		c.LogError("request failed", slog.Int("status", herr.Code), slog.Any("error", err))
	default:
		c.LogDebug("request rejected", slog.Int("status", herr.Code), slog.Any("error", err))
	}

	return c.JSON(herr.Code, resp)
}

// toHTTPError maps domain errors to statuses. Unknown errors become a
// generic 500.
func toHTTPError(err error) *internal.HTTPError {
	if verr, ok := validation.As(err); ok {
		return internal.ErrUnprocessable("Validation failed", internal.WithFields(verr.Map()), internal.WithError(err))
	}
	if msg, ok := editor.UpstreamMessage(err); ok {
		return internal.ErrBadGateway("Failed to fetch data", internal.WithDetails(msg), internal.WithError(err))
	}
	switch {
	case errors.Is(err, templates.ErrNotFound):
		return internal.ErrNotFound("Template not found.", internal.WithError(err))
	case errors.Is(err, templates.ErrForbidden):
		return internal.ErrForbidden("This action is unauthorized.", internal.WithError(err))
	}
	if herr := internal.AsHTTPError(err); herr != nil && !middlewares.IsPanicError(err) {
		return herr
	}
	return internal.ErrInternal("Internal server error", internal.WithError(err))
}
