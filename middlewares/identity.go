package middlewares

import (
	"errors"

	"github.com/dmitrymomot/mailcraft/internal"
	"github.com/dmitrymomot/mailcraft/internal/identity"
	"github.com/dmitrymomot/mailcraft/pkg/jwt"
)

// TokenParser validates a bearer token. *jwt.Service implements it.
type TokenParser interface {
	Parse(token string) (*jwt.Claims, error)
}

// Identity resolves the caller's principal from an Authorization bearer token
// and stores it for identity.FromContext.
//
// With required set, requests without a valid token are rejected with 401.
// Without it, anonymous requests pass as the zero Principal, but a token that
// is present and invalid is still rejected.
func Identity(parser TokenParser, required bool) internal.Middleware {
	extractor := internal.NewExtractor(internal.FromBearerToken())

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			token, ok := extractor.Extract(c)
			if !ok {
				if required {
					return internal.ErrUnauthorized("Unauthenticated.")
				}
				return next(c)
			}

			claims, err := parser.Parse(token)
			if err != nil {
				msg := "Invalid token."
				if errors.Is(err, jwt.ErrExpiredToken) {
					msg = "Token expired."
				}
				return internal.ErrUnauthorized(msg, internal.WithError(err))
			}
			if claims.Subject == "" {
				return internal.ErrUnauthorized("Invalid token.")
			}

			c.Set(identity.ContextKey{}, identity.Principal{
				ID:    claims.Subject,
				Email: claims.Email,
				Name:  claims.Name,
			})
			return next(c)
		}
	}
}
