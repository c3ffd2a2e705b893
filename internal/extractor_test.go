package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/mailcraft/internal"
)

func TestExtractor(t *testing.T) {
	t.Parallel()

	t.Run("empty sources returns false", func(t *testing.T) {
		t.Parallel()

		ext := internal.NewExtractor()
		requestVia(t, httptest.NewRequest(http.MethodGet, "/", nil), nil, func(c internal.Context) {
			v, ok := ext.Extract(c)
			assert.False(t, ok)
			assert.Empty(t, v)
		})
	})

	t.Run("first source wins", func(t *testing.T) {
		t.Parallel()

		ext := internal.NewExtractor(internal.FromHeader("X-First"), internal.FromQuery("q"))
		req := httptest.NewRequest(http.MethodGet, "/?q=query-val", nil)
		req.Header.Set("X-First", "first-val")
		requestVia(t, req, nil, func(c internal.Context) {
			v, ok := ext.Extract(c)
			assert.True(t, ok)
			assert.Equal(t, "first-val", v)
		})
	})

	t.Run("falls through to next source", func(t *testing.T) {
		t.Parallel()

		ext := internal.NewExtractor(internal.FromHeader("X-Missing"), internal.FromQuery("q"))
		requestVia(t, httptest.NewRequest(http.MethodGet, "/?q=query-val", nil), nil, func(c internal.Context) {
			v, ok := ext.Extract(c)
			assert.True(t, ok)
			assert.Equal(t, "query-val", v)
		})
	})
}

func TestFromParam(t *testing.T) {
	t.Parallel()

	var got string
	h := handlerFunc(func(r internal.Router) {
		r.GET("/{id}", func(c internal.Context) error {
			got, _ = internal.FromParam("id")(c)
			return nil
		})
	})
	internal.New(internal.WithHandlers(h)).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/abc", nil))
	assert.Equal(t, "abc", got)
}

func TestFromBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{name: "bearer", header: "Bearer tok123", want: "tok123", ok: true},
		{name: "case insensitive", header: "bEaReR tok123", want: "tok123", ok: true},
		{name: "missing", header: "", ok: false},
		{name: "empty token", header: "Bearer ", ok: false},
		{name: "whitespace token", header: "Bearer    ", ok: false},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			requestVia(t, req, nil, func(c internal.Context) {
				v, ok := internal.FromBearerToken()(c)
				assert.Equal(t, tt.ok, ok)
				assert.Equal(t, tt.want, v)
			})
		})
	}
}
