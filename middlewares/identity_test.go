package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailcraft/internal"
	"github.com/dmitrymomot/mailcraft/internal/identity"
	"github.com/dmitrymomot/mailcraft/middlewares"
	"github.com/dmitrymomot/mailcraft/pkg/jwt"
)

func newJWT(t *testing.T, now func() time.Time) *jwt.Service {
	t.Helper()

	svc, err := jwt.New(jwt.Config{Secret: "test-secret-key-at-least-32-bytes!", TTL: time.Hour}, jwt.WithClock(now))
	require.NoError(t, err)
	return svc
}

func bearer(t *testing.T, svc *jwt.Service, sub string) string {
	t.Helper()

	claims := jwt.Claims{Email: sub + "@example.com", Name: "User " + sub}
	claims.Subject = sub
	token, err := svc.Generate(claims)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestIdentity(t *testing.T) {
	t.Parallel()

	svc := newJWT(t, time.Now)

	whoami := func(got *identity.Principal) internal.HandlerFunc {
		return func(c internal.Context) error {
			*got = identity.FromContext(c)
			return ok(c)
		}
	}

	tests := []struct {
		name     string
		auth     string
		required bool
		status   int
		want     identity.Principal
	}{
		{
			name:     "required with valid token",
			auth:     bearer(t, svc, "7"),
			required: true,
			status:   http.StatusOK,
			want:     identity.Principal{ID: "7", Email: "7@example.com", Name: "User 7"},
		},
		{name: "required without token", required: true, status: http.StatusUnauthorized},
		{name: "optional without token", status: http.StatusOK},
		{name: "optional with garbage token", auth: "Bearer nope", status: http.StatusUnauthorized},
		{name: "required with garbage token", auth: "Bearer nope", required: true, status: http.StatusUnauthorized},
		{
			name:   "optional with valid token",
			auth:   bearer(t, svc, "9"),
			status: http.StatusOK,
			want:   identity.Principal{ID: "9", Email: "9@example.com", Name: "User 9"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}

			var got identity.Principal
			rec := serve(t, req, whoami(&got), internal.WithMiddleware(middlewares.Identity(svc, tt.required)))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentity_ExpiredToken(t *testing.T) {
	t.Parallel()

	issued := newJWT(t, func() time.Time { return time.Now().Add(-2 * time.Hour) })
	auth := bearer(t, issued, "7")

	var herr *internal.HTTPError
	serve(t, func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", auth)
		return req
	}(), ok,
		internal.WithMiddleware(middlewares.Identity(newJWT(t, time.Now), true)),
		internal.WithErrorHandler(func(c internal.Context, err error) error {
			herr = internal.AsHTTPError(err)
			return c.NoContent(herr.StatusCode())
		}),
	)

	require.NotNil(t, herr)
	assert.Equal(t, http.StatusUnauthorized, herr.Code)
	assert.Equal(t, "Token expired.", herr.Message)
	assert.ErrorIs(t, herr, jwt.ErrExpiredToken)
}
