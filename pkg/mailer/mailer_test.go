package mailer_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailcraft/pkg/mailer"
)

func validEmail() *mailer.Email {
	return &mailer.Email{
		To:      []string{"jane@example.com"},
		Subject: "Hello",
		HTML:    "<p>Hi</p>",
	}
}

func TestMailer_Send(t *testing.T) {
	t.Parallel()

	t.Run("fills configured sender", func(t *testing.T) {
		t.Parallel()

		var got *mailer.Email
		m := mailer.New(mailer.SenderFunc(func(_ context.Context, e *mailer.Email) error {
			got = e
			return nil
		}), mailer.Config{FromAddress: "news@example.com", FromName: "News Team"})

		require.NoError(t, m.Send(context.Background(), validEmail()))
		require.NotNil(t, got)
		assert.Equal(t, `"News Team" <news@example.com>`, got.From)
	})

	t.Run("keeps explicit sender", func(t *testing.T) {
		t.Parallel()

		var got *mailer.Email
		m := mailer.New(mailer.SenderFunc(func(_ context.Context, e *mailer.Email) error {
			got = e
			return nil
		}), mailer.Config{FromAddress: "news@example.com"})

		email := validEmail()
		email.From = "other@example.com"
		require.NoError(t, m.Send(context.Background(), email))
		assert.Equal(t, "other@example.com", got.From)
	})

	t.Run("invalid message never reaches provider", func(t *testing.T) {
		t.Parallel()

		called := false
		m := mailer.New(mailer.SenderFunc(func(context.Context, *mailer.Email) error {
			called = true
			return nil
		}), mailer.Config{})

		err := m.Send(context.Background(), &mailer.Email{})
		require.Error(t, err)
		assert.ErrorIs(t, err, mailer.ErrNoSender)
		assert.ErrorIs(t, err, mailer.ErrNoRecipient)
		assert.ErrorIs(t, err, mailer.ErrNoSubject)
		assert.ErrorIs(t, err, mailer.ErrNoContent)
		assert.False(t, called)
	})

	t.Run("wraps provider error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("provider down")
		m := mailer.New(mailer.SenderFunc(func(context.Context, *mailer.Email) error {
			return boom
		}), mailer.Config{FromAddress: "news@example.com"})

		err := m.Send(context.Background(), validEmail())
		assert.ErrorIs(t, err, mailer.ErrSendFailed)
		assert.ErrorIs(t, err, boom)
	})
}

func TestRecipient(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "jane@example.com", mailer.Recipient("", "jane@example.com"))
	assert.Equal(t, `"Jane Doe" <jane@example.com>`, mailer.Recipient("Jane Doe", "jane@example.com"))
	assert.Equal(t, "", mailer.Config{}.From())
}

func TestSimpleTags(t *testing.T) {
	t.Parallel()

	tags := mailer.SimpleTags("a", "b")
	assert.Len(t, tags, 2)
	assert.Equal(t, struct{}{}, tags["a"])
}

func TestLogSender(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := mailer.NewLogSender(slog.New(slog.NewJSONHandler(&buf, nil)))

	email := validEmail()
	email.From = "news@example.com"
	require.NoError(t, s.Send(context.Background(), email))
	assert.Contains(t, buf.String(), `"subject":"Hello"`)
	assert.Contains(t, buf.String(), "jane@example.com")
}
