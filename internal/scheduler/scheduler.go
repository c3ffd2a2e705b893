package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mailcraft/internal/identity"
	"github.com/dmitrymomot/mailcraft/internal/templates"
	"github.com/dmitrymomot/mailcraft/pkg/job"
	"github.com/dmitrymomot/mailcraft/pkg/logger"
	"github.com/dmitrymomot/mailcraft/pkg/metrics"
	"github.com/dmitrymomot/mailcraft/pkg/validation"
)

// clockSkew is how far in the past ScheduledAt may be and still count as now.
const clockSkew = time.Second

// TemplateSource reads templates. *templates.Service implements it.
type TemplateSource interface {
	// Get applies the principal's ownership scope.
	Get(ctx context.Context, p identity.Principal, id uuid.UUID) (*templates.TemplateWithContent, error)
	// Lookup ignores ownership.
	Lookup(ctx context.Context, id uuid.UUID) (*templates.TemplateWithContent, error)
}

// Enqueuer inserts a batch of tasks atomically. *job.Manager implements it.
type Enqueuer interface {
	EnqueueBatch(ctx context.Context, name string, payloads []any, opts ...job.EnqueueOption) error
}

// Scheduler validates send requests and fans them out into delivery tasks.
type Scheduler struct {
	templates   TemplateSource
	queue       Enqueuer
	logger      *slog.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
	maxAttempts int
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithMaxAttempts sets the retry budget of every delivery task.
// Zero keeps the job manager default.
func WithMaxAttempts(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// WithClock overrides the time source used for the not-in-the-past check.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Scheduler.
func New(src TemplateSource, queue Enqueuer, opts ...Option) *Scheduler {
	s := &Scheduler{
		templates: src,
		queue:     queue,
		logger:    logger.NewNope(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule validates req and enqueues one delivery per recipient, in request
// order, in a single transaction. It returns once the batch is committed.
func (s *Scheduler) Schedule(ctx context.Context, p identity.Principal, req Request) (*Result, error) {
	tpl, err := s.Validate(ctx, p, req)
	if err != nil {
		return nil, err
	}

	subject := firstNonBlank(req.SubjectOverride, req.Subject, tpl.Subject, tpl.Name)

	var replyTo *Address
	if p.Email != "" {
		replyTo = &Address{Email: p.Email, Name: p.Name}
	}

	payloads := make([]any, 0, len(req.Recipients))
	for _, rcpt := range req.Recipients {
		payloads = append(payloads, DeliveryPayload{
			Recipient:    rcpt,
			TemplateID:   tpl.ID,
			Subject:      subject,
			HTMLOverride: req.HTML,
			ReplyTo:      replyTo,
			ScheduledAt:  req.ScheduledAt,
		})
	}

	opts := []job.EnqueueOption{
		job.InQueue(Queue),
		job.ScheduledAt(req.ScheduledAt),
		job.Tags("template_" + tpl.ID.String()),
	}
	if s.maxAttempts > 0 {
		opts = append(opts, job.MaxAttempts(s.maxAttempts))
	}

	if err := s.queue.EnqueueBatch(ctx, TaskName, payloads, opts...); err != nil {
		return nil, errors.Join(ErrEnqueueFailed, err)
	}

	s.metrics.DeliveriesScheduled(len(payloads))
	s.logger.InfoContext(ctx, "deliveries scheduled",
		slog.String("template_id", tpl.ID.String()),
		slog.Int("recipients", len(payloads)),
		slog.Time("scheduled_at", req.ScheduledAt),
	)

	return &Result{ScheduledAt: req.ScheduledAt, RecipientCount: len(payloads)}, nil
}

// Validate checks req without enqueuing anything and returns the resolved
// template. Every violation is collected into one *validation.Errors.
// Storage failures are returned as-is.
func (s *Scheduler) Validate(ctx context.Context, p identity.Principal, req Request) (*templates.TemplateWithContent, error) {
	verr := validation.New()
	verr.Merge(validation.Struct(req))

	switch {
	case req.ScheduledAt.IsZero():
		verr.Add("scheduled_at", "The scheduled_at field is required.")
	case req.ScheduledAt.Before(s.now().Add(-clockSkew)):
		verr.Add("scheduled_at", "The scheduled_at field must be a date after or equal to now.")
	}

	var tpl *templates.TemplateWithContent
	if !verr.Has("template_id") {
		id, err := uuid.Parse(req.TemplateID)
		if err != nil {
			verr.Add("template_id", "The selected template_id is invalid.")
		} else {
			tpl, err = s.templates.Get(ctx, p, id)
			switch {
			case errors.Is(err, templates.ErrNotFound):
				verr.Add("template_id", "The selected template_id is invalid.")
			case err != nil:
				return nil, fmt.Errorf("scheduler: resolve template: %w", err)
			}
		}
	}

	var storedHTML string
	if tpl != nil {
		storedHTML = tpl.Content.HTML
	}
	if firstNonBlank(req.HTML, storedHTML) == "" {
		verr.Add("html_content", "The html_content field is required.")
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}
	return tpl, nil
}
