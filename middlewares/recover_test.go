package middlewares_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailcraft/internal"
	"github.com/dmitrymomot/mailcraft/middlewares"
)

func TestRecover(t *testing.T) {
	t.Parallel()

	capture := func(dst *error) internal.Option {
		return internal.WithErrorHandler(func(c internal.Context, err error) error {
			*dst = err
			return c.String(http.StatusInternalServerError, "boom")
		})
	}

	t.Run("converts panic to PanicError", func(t *testing.T) {
		t.Parallel()

		var got error
		rec := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), func(internal.Context) error {
			panic("kaput")
		}, internal.WithMiddleware(middlewares.Recover()), capture(&got))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		pe, ok := middlewares.AsPanicError(got)
		require.True(t, ok)
		assert.Equal(t, "kaput", pe.Value)
		assert.NotEmpty(t, pe.Stack)
		assert.Equal(t, "panic: kaput", pe.Error())
	})

	t.Run("stack capture disabled", func(t *testing.T) {
		t.Parallel()

		var got error
		serve(t, httptest.NewRequest(http.MethodGet, "/", nil), func(internal.Context) error {
			panic(42)
		}, internal.WithMiddleware(middlewares.Recover(middlewares.WithRecoverStackSize(0))), capture(&got))

		pe, ok := middlewares.AsPanicError(got)
		require.True(t, ok)
		assert.Nil(t, pe.Stack)
		assert.Equal(t, "panic: 42", pe.Error())
	})

	t.Run("passes through", func(t *testing.T) {
		t.Parallel()

		rec := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), ok, internal.WithMiddleware(middlewares.Recover()))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("non-panic errors are not panic errors", func(t *testing.T) {
		t.Parallel()

		assert.False(t, middlewares.IsPanicError(errors.New("plain")))
		assert.True(t, middlewares.IsPanicError(&middlewares.PanicError{Value: "x"}))
	})
}
