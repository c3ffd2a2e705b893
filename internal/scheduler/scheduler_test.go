package scheduler_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailcraft/internal/identity"
	"github.com/dmitrymomot/mailcraft/internal/scheduler"
	"github.com/dmitrymomot/mailcraft/internal/templates"
	"github.com/dmitrymomot/mailcraft/pkg/job"
	"github.com/dmitrymomot/mailcraft/pkg/validation"
)

var (
	now   = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	alice = identity.Principal{ID: "alice", Email: "alice@example.com", Name: "Alice"}
	bob   = identity.Principal{ID: "bob", Email: "bob@example.com"}
)

type mockEnqueuer struct {
	mock.Mock
}

func (m *mockEnqueuer) EnqueueBatch(ctx context.Context, name string, payloads []any, opts ...job.EnqueueOption) error {
	args := m.Called(ctx, name, payloads, opts)
	return args.Error(0)
}

// capturedPayloads returns the payloads of the only EnqueueBatch call.
func (m *mockEnqueuer) capturedPayloads(t *testing.T) []scheduler.DeliveryPayload {
	t.Helper()

	m.AssertNumberOfCalls(t, "EnqueueBatch", 1)
	raw, ok := m.Calls[0].Arguments.Get(2).([]any)
	require.True(t, ok)

	out := make([]scheduler.DeliveryPayload, 0, len(raw))
	for _, p := range raw {
		dp, ok := p.(scheduler.DeliveryPayload)
		require.True(t, ok)
		out = append(out, dp)
	}
	return out
}

type fixture struct {
	svc   *templates.Service
	queue *mockEnqueuer
	sched *scheduler.Scheduler
}

func newFixture(t *testing.T, enforce bool) *fixture {
	t.Helper()

	svc := templates.NewService(templates.NewMemory(),
		templates.WithOwnershipEnforced(enforce),
		templates.WithClock(func() time.Time { return now }),
	)
	queue := &mockEnqueuer{}
	return &fixture{
		svc:   svc,
		queue: queue,
		sched: scheduler.New(svc, queue,
			scheduler.WithMaxAttempts(3),
			scheduler.WithClock(func() time.Time { return now }),
		),
	}
}

func (f *fixture) saveTemplate(t *testing.T, p identity.Principal, doc, html string) uuid.UUID {
	t.Helper()

	id, err := f.svc.Save(context.Background(), p, templates.SaveInput{Document: json.RawMessage(doc), HTML: html})
	require.NoError(t, err)
	return id
}

func TestSchedule_FansOutOneTaskPerRecipient(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	id := f.saveTemplate(t, alice, `{"title":"Promo"}`, "<p>Hi</p>")
	f.queue.On("EnqueueBatch", mock.Anything, scheduler.TaskName, mock.Anything, mock.Anything).Return(nil)

	at := now.Add(time.Hour)
	res, err := f.sched.Schedule(context.Background(), alice, scheduler.Request{
		TemplateID:  id.String(),
		Recipients:  []string{"a@x.com", "b@x.com", "c@x.com"},
		ScheduledAt: at,
		HTML:        "<p>Override</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.RecipientCount)
	assert.Equal(t, at, res.ScheduledAt)

	payloads := f.queue.capturedPayloads(t)
	require.Len(t, payloads, 3)
	for i, rcpt := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		p := payloads[i]
		assert.Equal(t, rcpt, p.Recipient)
		assert.Equal(t, id, p.TemplateID)
		assert.Equal(t, "Promo", p.Subject)
		assert.Equal(t, "<p>Override</p>", p.HTMLOverride)
		assert.Equal(t, at, p.ScheduledAt)
		require.NotNil(t, p.ReplyTo)
		assert.Equal(t, scheduler.Address{Email: "alice@example.com", Name: "Alice"}, *p.ReplyTo)
	}

	opts, ok := f.queue.Calls[0].Arguments.Get(3).([]job.EnqueueOption)
	require.True(t, ok)
	assert.Len(t, opts, 4)
}

func TestSchedule_SubjectResolution(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		override        string
		subject         string
		templateSubject string
		want            string
	}{
		{name: "override wins", override: "Override", subject: "Request", templateSubject: "Stored", want: "Override"},
		{name: "request subject", subject: "Request", templateSubject: "Stored", want: "Request"},
		{name: "template subject", templateSubject: "Stored", want: "Stored"},
		{name: "blank values skipped", override: "  ", subject: "", templateSubject: "Stored", want: "Stored"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, true)
			id := f.saveTemplate(t, alice, `{"title":"Name"}`, "<p>Hi</p>")
			if tt.templateSubject != "" {
				require.NoError(t, f.svc.UpdateSubject(context.Background(), alice, id, tt.templateSubject))
			}
			f.queue.On("EnqueueBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

			_, err := f.sched.Schedule(context.Background(), alice, scheduler.Request{
				TemplateID:      id.String(),
				Recipients:      []string{"a@x.com"},
				ScheduledAt:     now,
				Subject:         tt.subject,
				SubjectOverride: tt.override,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.queue.capturedPayloads(t)[0].Subject)
		})
	}
}

func TestSchedule_NoReplyToWithoutEmail(t *testing.T) {
	t.Parallel()

	f := newFixture(t, false)
	id := f.saveTemplate(t, identity.Principal{}, `{"title":"Anon"}`, "<p>Hi</p>")
	f.queue.On("EnqueueBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.sched.Schedule(context.Background(), identity.Principal{}, scheduler.Request{
		TemplateID:  id.String(),
		Recipients:  []string{"a@x.com"},
		ScheduledAt: now.Add(time.Minute),
	})
	require.NoError(t, err)

	p := f.queue.capturedPayloads(t)[0]
	assert.Nil(t, p.ReplyTo)
	assert.Empty(t, p.HTMLOverride)
}

func TestSchedule_ValidationIsAllOrNothing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mutate func(*scheduler.Request)
		name   string
		fields []string
	}{
		{
			name:   "past scheduled_at",
			mutate: func(r *scheduler.Request) { r.ScheduledAt = now.Add(-time.Minute) },
			fields: []string{"scheduled_at"},
		},
		{
			name:   "missing scheduled_at",
			mutate: func(r *scheduler.Request) { r.ScheduledAt = time.Time{} },
			fields: []string{"scheduled_at"},
		},
		{
			name:   "one malformed recipient",
			mutate: func(r *scheduler.Request) { r.Recipients = []string{"a@x.com", "not-an-email", "c@x.com"} },
			fields: []string{"recipients.1"},
		},
		{
			name:   "no recipients",
			mutate: func(r *scheduler.Request) { r.Recipients = nil },
			fields: []string{"recipients"},
		},
		{
			name:   "template id not a uuid",
			mutate: func(r *scheduler.Request) { r.TemplateID = "42" },
			fields: []string{"html_content", "template_id"},
		},
		{
			name:   "unknown template",
			mutate: func(r *scheduler.Request) { r.TemplateID = uuid.NewString() },
			fields: []string{"html_content", "template_id"},
		},
		{
			name: "every violation reported together",
			mutate: func(r *scheduler.Request) {
				r.TemplateID = ""
				r.Recipients = []string{"bad"}
				r.ScheduledAt = now.Add(-time.Hour)
			},
			fields: []string{"html_content", "recipients.0", "scheduled_at", "template_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, true)
			id := f.saveTemplate(t, alice, `{"title":"Promo"}`, "<p>Hi</p>")

			req := scheduler.Request{
				TemplateID:  id.String(),
				Recipients:  []string{"a@x.com"},
				ScheduledAt: now.Add(time.Hour),
			}
			tt.mutate(&req)

			res, err := f.sched.Schedule(context.Background(), alice, req)
			assert.Nil(t, res)

			verr, ok := validation.As(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Equal(t, tt.fields, verr.Fields())
			f.queue.AssertNotCalled(t, "EnqueueBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSchedule_ClockSkewTolerance(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	id := f.saveTemplate(t, alice, `{"title":"Promo"}`, "<p>Hi</p>")
	f.queue.On("EnqueueBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.sched.Schedule(context.Background(), alice, scheduler.Request{
		TemplateID:  id.String(),
		Recipients:  []string{"a@x.com"},
		ScheduledAt: now.Add(-500 * time.Millisecond),
	})
	assert.NoError(t, err)
}

func TestSchedule_HTMLRequirement(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	id := f.saveTemplate(t, alice, `{"title":"No HTML"}`, "")
	f.queue.On("EnqueueBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := scheduler.Request{TemplateID: id.String(), Recipients: []string{"a@x.com"}, ScheduledAt: now}

	_, err := f.sched.Schedule(context.Background(), alice, req)
	verr, ok := validation.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{"html_content"}, verr.Fields())

	req.HTML = "<p>Override</p>"
	_, err = f.sched.Schedule(context.Background(), alice, req)
	assert.NoError(t, err)
}

func TestSchedule_Ownership(t *testing.T) {
	t.Parallel()

	t.Run("enforced: other owner's template is invalid", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, true)
		id := f.saveTemplate(t, alice, `{"title":"Mine"}`, "<p>Hi</p>")

		_, err := f.sched.Schedule(context.Background(), bob, scheduler.Request{
			TemplateID: id.String(), Recipients: []string{"a@x.com"}, ScheduledAt: now,
		})
		verr, ok := validation.As(err)
		require.True(t, ok)
		assert.True(t, verr.Has("template_id"))
		f.queue.AssertNotCalled(t, "EnqueueBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("single-tenant: any template is usable", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, false)
		id := f.saveTemplate(t, alice, `{"title":"Shared"}`, "<p>Hi</p>")
		f.queue.On("EnqueueBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		res, err := f.sched.Schedule(context.Background(), bob, scheduler.Request{
			TemplateID: id.String(), Recipients: []string{"a@x.com"}, ScheduledAt: now,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, res.RecipientCount)
	})
}

func TestSchedule_EnqueueFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, true)
	id := f.saveTemplate(t, alice, `{"title":"Promo"}`, "<p>Hi</p>")
	queueErr := errors.New("connection reset")
	f.queue.On("EnqueueBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(queueErr)

	res, err := f.sched.Schedule(context.Background(), alice, scheduler.Request{
		TemplateID: id.String(), Recipients: []string{"a@x.com", "b@x.com"}, ScheduledAt: now,
	})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, scheduler.ErrEnqueueFailed)
	assert.ErrorIs(t, err, queueErr)
	assert.NotErrorIs(t, err, validation.ErrInvalid)
}
