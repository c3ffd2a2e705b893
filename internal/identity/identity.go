// Package identity carries the authenticated principal from the HTTP edge
// into services. Services take a Principal argument and never read the
// request context themselves.
package identity

import (
	"context"
	"log/slog"
)

// Principal is the user on whose behalf a request is made.
// The zero value is the anonymous principal of single-tenant mode.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Anonymous reports whether p has no identity.
func (p Principal) Anonymous() bool {
	return p.ID == ""
}

// ContextKey is the context key a Principal is stored under.
// The Identity middleware sets it through the request context's Set.
type ContextKey struct{}

// FromContext returns the principal stored in ctx, or the anonymous principal.
func FromContext(ctx context.Context) Principal {
	p, _ := ctx.Value(ContextKey{}).(Principal)
	return p
}

// LogExtractor adds user_id to log records for authenticated requests.
func LogExtractor(ctx context.Context) (slog.Attr, bool) {
	p := FromContext(ctx)
	if p.Anonymous() {
		return slog.Attr{}, false
	}
	return slog.String("user_id", p.ID), true
}
