package middlewares_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailcraft/internal"
	"github.com/dmitrymomot/mailcraft/middlewares"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates a uuid", func(t *testing.T) {
		t.Parallel()

		var seen string
		rec := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), func(c internal.Context) error {
			seen = middlewares.GetRequestID(c)
			return ok(c)
		}, internal.WithMiddleware(middlewares.RequestID()))

		got := rec.Header().Get("X-Request-ID")
		_, err := uuid.Parse(got)
		require.NoError(t, err)
		assert.Equal(t, got, seen)
	})

	t.Run("reuses upstream id", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Correlation-ID", "corr-1")
		rec := serve(t, req, ok, internal.WithMiddleware(middlewares.RequestID()))

		assert.Equal(t, "corr-1", rec.Header().Get("X-Request-ID"))
	})

	t.Run("header priority", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Trace-ID", "trace")
		req.Header.Set("X-Custom-ID", "custom")
		rec := serve(t, req, ok, internal.WithMiddleware(
			middlewares.RequestID(middlewares.WithRequestIDHeaders("X-Custom-ID", "X-Trace-ID")),
		))

		assert.Equal(t, "custom", rec.Header().Get("X-Request-ID"))
	})

	t.Run("oversized upstream id is replaced", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", strings.Repeat("x", 500))
		rec := serve(t, req, ok, internal.WithMiddleware(
			middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "generated" })),
		))

		assert.Equal(t, "generated", rec.Header().Get("X-Request-ID"))
	})
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	extract := middlewares.RequestIDExtractor()

	_, found := extract(context.Background())
	assert.False(t, found)

	var attrValue string
	serve(t, httptest.NewRequest(http.MethodGet, "/", nil), func(c internal.Context) error {
		attr, found := extract(c.Context())
		require.True(t, found)
		assert.Equal(t, "request_id", attr.Key)
		attrValue = attr.Value.String()
		return ok(c)
	}, internal.WithMiddleware(middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "rid-1" }))))

	assert.Equal(t, "rid-1", attrValue)
}
