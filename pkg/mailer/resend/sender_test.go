package resend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailcraft/pkg/mailer"
)

func TestSender_Send(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": uuid.NewString()})
	}))
	defer srv.Close()

	s, err := New(Config{APIKey: "re_test", BaseURL: srv.URL})
	require.NoError(t, err)

	err = s.Send(context.Background(), &mailer.Email{
		From:    "news@example.com",
		To:      []string{"jane@example.com"},
		ReplyTo: "owner@example.com",
		Subject: "Spring sale",
		HTML:    "<p>Hi</p>",
		Tags:    mailer.Tags{"template": "abc", "bulk": struct{}{}},
	})
	require.NoError(t, err)

	assert.Equal(t, "news@example.com", got["from"])
	assert.Equal(t, "Spring sale", got["subject"])
	assert.Equal(t, "<p>Hi</p>", got["html"])
	assert.ElementsMatch(t, []any{"jane@example.com"}, got["to"])
}

func TestSender_SendProviderError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid from"}`))
	}))
	defer srv.Close()

	s, err := New(Config{APIKey: "re_test", BaseURL: srv.URL})
	require.NoError(t, err)

	err = s.Send(context.Background(), &mailer.Email{
		From: "bad", To: []string{"jane@example.com"}, Subject: "x", HTML: "<p>x</p>",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resend: send email")
}

func TestTagValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "true", tagValue(struct{}{}))
	assert.Equal(t, "true", tagValue(nil))
	assert.Equal(t, "x", tagValue("x"))
	assert.Equal(t, "false", tagValue(false))
	assert.Equal(t, "12", tagValue(12))
	assert.Equal(t, "1.5", tagValue(1.5))
}

func TestConfig_Enabled(t *testing.T) {
	t.Parallel()

	assert.False(t, Config{}.Enabled())
	assert.True(t, Config{APIKey: "re_x"}.Enabled())
}
