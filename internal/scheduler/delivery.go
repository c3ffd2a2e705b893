package scheduler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/mailcraft/internal/templates"
	"github.com/dmitrymomot/mailcraft/pkg/logger"
	"github.com/dmitrymomot/mailcraft/pkg/mailer"
	"github.com/dmitrymomot/mailcraft/pkg/metrics"
	"github.com/dmitrymomot/mailcraft/pkg/sanitizer"
)

// DeliveryTask sends one template to one recipient.
// Register it with job.WithTask[scheduler.DeliveryPayload](task).
type DeliveryTask struct {
	templates TemplateSource
	sender    mailer.Sender
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// DeliveryOption configures a DeliveryTask.
type DeliveryOption func(*DeliveryTask)

func WithDeliveryLogger(l *slog.Logger) DeliveryOption {
	return func(t *DeliveryTask) {
		if l != nil {
			t.logger = l
		}
	}
}

func WithDeliveryMetrics(m *metrics.Metrics) DeliveryOption {
	return func(t *DeliveryTask) {
		t.metrics = m
	}
}

// NewDeliveryTask creates the task. sender is expected to fill in the
// configured From address, as *mailer.Mailer does.
func NewDeliveryTask(src TemplateSource, sender mailer.Sender, opts ...DeliveryOption) *DeliveryTask {
	t := &DeliveryTask{
		templates: src,
		sender:    sender,
		logger:    logger.NewNope(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *DeliveryTask) Name() string {
	return TaskName
}

// Handle reloads the template and sends the email. Any error is returned to
// the queue, which retries the task.
func (t *DeliveryTask) Handle(ctx context.Context, p DeliveryPayload) error {
	log := t.logger.With(
		slog.String("recipient", p.Recipient),
		slog.String("template_id", p.TemplateID.String()),
	)

	email, err := t.build(ctx, p)
	if err == nil {
		err = t.sender.Send(ctx, email)
	}
	if err != nil {
		t.metrics.DeliveryFailed(false)
		log.ErrorContext(ctx, "delivery attempt failed", slog.Any("error", err))
		return &DeliveryError{Recipient: p.Recipient, TemplateID: p.TemplateID, Err: err}
	}

	t.metrics.DeliverySent()
	log.InfoContext(ctx, "email delivered", slog.String("subject", email.Subject))
	return nil
}

// Failed runs once the retry budget is exhausted.
func (t *DeliveryTask) Failed(ctx context.Context, p DeliveryPayload, err error) {
	t.metrics.DeliveryFailed(true)
	logger.Critical(ctx, t.logger, "delivery failed after all attempts",
		slog.String("recipient", p.Recipient),
		slog.String("template_id", p.TemplateID.String()),
		slog.Time("scheduled_at", p.ScheduledAt),
		slog.Any("error", err),
	)
}

func (t *DeliveryTask) build(ctx context.Context, p DeliveryPayload) (*mailer.Email, error) {
	tpl, err := t.templates.Lookup(ctx, p.TemplateID)
	if errors.Is(err, templates.ErrNotFound) {
		return nil, ErrTemplateGone
	}
	if err != nil {
		return nil, err
	}

	html := firstNonBlank(p.HTMLOverride, tpl.Content.HTML)
	if html == "" {
		return nil, ErrNoHTML
	}

	email := &mailer.Email{
		To:      []string{p.Recipient},
		Subject: firstNonBlank(p.Subject, tpl.Subject, tpl.Name),
		HTML:    html,
		Text:    sanitizer.PlainText(html),
		Tags:    mailer.Tags{"template_id": tpl.ID.String()},
	}
	if p.ReplyTo != nil {
		email.ReplyTo = mailer.Recipient(p.ReplyTo.Name, p.ReplyTo.Email)
	}
	return email, nil
}
