package validation_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailcraft/pkg/validation"
)

type sendInput struct {
	TemplateID string   `json:"template_id" validate:"required,uuid"`
	Recipients []string `json:"recipients" validate:"required,min=1,dive,required,email"`
	Name       string   `json:"name" validate:"omitempty,max=5"`
}

func TestStruct(t *testing.T) {
	t.Parallel()

	t.Run("valid input", func(t *testing.T) {
		t.Parallel()

		errs := validation.Struct(sendInput{
			TemplateID: "4b3c7f02-8c1d-4d5e-9a53-8f7f0f6e1b21",
			Recipients: []string{"a@x.com"},
		})
		assert.Nil(t, errs)
		assert.True(t, errs.Empty())
		assert.NoError(t, errs.Err())
	})

	t.Run("reports every violation with json paths", func(t *testing.T) {
		t.Parallel()

		errs := validation.Struct(sendInput{
			TemplateID: "nope",
			Recipients: []string{"a@x.com", "not-an-email", ""},
			Name:       "too long",
		})
		require.NotNil(t, errs)

		assert.Equal(t, []string{"name", "recipients.1", "recipients.2", "template_id"}, errs.Fields())
		assert.Equal(t, []string{"The recipients.1 field must be a valid email address."}, errs.Get("recipients.1"))
		assert.Equal(t, []string{"The recipients.2 field is required."}, errs.Get("recipients.2"))
		assert.Equal(t, []string{"The template_id field must be a valid UUID."}, errs.Get("template_id"))
		assert.Equal(t, []string{"The name field must not be greater than 5 characters."}, errs.Get("name"))
	})

	t.Run("empty slice", func(t *testing.T) {
		t.Parallel()

		errs := validation.Struct(sendInput{
			TemplateID: "4b3c7f02-8c1d-4d5e-9a53-8f7f0f6e1b21",
			Recipients: []string{},
		})
		require.NotNil(t, errs)
		assert.Equal(t, []string{"The recipients field must have at least 1 items."}, errs.Get("recipients"))
	})
}

func TestVar(t *testing.T) {
	t.Parallel()

	assert.Nil(t, validation.Var("name", "ok", "required,max=255"))

	errs := validation.Var("name", "", "required,max=255")
	require.NotNil(t, errs)
	assert.Equal(t, []string{"The name field is required."}, errs.Get("name"))
}

func TestErrors(t *testing.T) {
	t.Parallel()

	t.Run("matches ErrInvalid through wrapping", func(t *testing.T) {
		t.Parallel()

		errs := validation.New()
		errs.Add("scheduled_at", "must be in the future")

		wrapped := fmt.Errorf("schedule: %w", errs.Err())
		assert.ErrorIs(t, wrapped, validation.ErrInvalid)

		got, ok := validation.As(wrapped)
		require.True(t, ok)
		assert.True(t, got.Has("scheduled_at"))
		assert.Contains(t, wrapped.Error(), "scheduled_at")
	})

	t.Run("merge", func(t *testing.T) {
		t.Parallel()

		a := validation.New()
		a.Add("x", "one")
		b := validation.New()
		b.Add("x", "two")
		b.Add("y", "three")

		a.Merge(b)
		a.Merge(nil)

		assert.Equal(t, map[string][]string{"x": {"one", "two"}, "y": {"three"}}, a.Map())
	})

	t.Run("nil set", func(t *testing.T) {
		t.Parallel()

		var errs *validation.Errors
		assert.True(t, errs.Empty())
		assert.NoError(t, errs.Err())
		assert.Empty(t, errs.Map())
		assert.False(t, errs.Has("x"))
	})

	t.Run("as on unrelated error", func(t *testing.T) {
		t.Parallel()

		_, ok := validation.As(errors.New("boom"))
		assert.False(t, ok)
	})
}
