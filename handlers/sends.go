package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/mailcraft/internal"
	"github.com/dmitrymomot/mailcraft/internal/identity"
	"github.com/dmitrymomot/mailcraft/internal/scheduler"
	"github.com/dmitrymomot/mailcraft/internal/templates"
	"github.com/dmitrymomot/mailcraft/pkg/validation"
)

// SendScheduler fans send requests out into delivery tasks.
// *scheduler.Scheduler implements it.
type SendScheduler interface {
	Schedule(ctx context.Context, p identity.Principal, req scheduler.Request) (*scheduler.Result, error)
	Validate(ctx context.Context, p identity.Principal, req scheduler.Request) (*templates.TemplateWithContent, error)
}

// Sends serves /api/sends.
type Sends struct {
	scheduler SendScheduler
}

func NewSends(s SendScheduler) *Sends {
	return &Sends{scheduler: s}
}

func (h *Sends) Routes(r internal.Router) {
	r.POST("/api/sends", h.schedule)
}

// sendRequest is the wire form of scheduler.Request. The date is kept as
// text so an unparsable value is reported as a field error.
type sendRequest struct {
	TemplateID      string   `json:"template_id"`
	ScheduledAt     string   `json:"scheduled_at"`
	HTML            string   `json:"html_content"`
	Subject         string   `json:"subject"`
	SubjectOverride string   `json:"subject_override"`
	Recipients      []string `json:"recipients"`
}

type scheduleResponse struct {
	ScheduledAt    time.Time `json:"scheduled_at"`
	Message        string    `json:"message"`
	RecipientCount int       `json:"recipient_count"`
	Success        bool      `json:"success"`
}

// Accepted scheduled_at layouts. Values without a zone are UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func (h *Sends) schedule(c internal.Context) error {
	var body sendRequest
	if err := c.BindJSON(&body); err != nil {
		return err
	}

	req := scheduler.Request{
		TemplateID:      strings.TrimSpace(body.TemplateID),
		HTML:            body.HTML,
		Subject:         body.Subject,
		SubjectOverride: body.SubjectOverride,
		Recipients:      make([]string, 0, len(body.Recipients)),
	}
	for _, r := range body.Recipients {
		req.Recipients = append(req.Recipients, strings.TrimSpace(r))
	}

	p := identity.FromContext(c)
	c.LogInfo("email scheduling request received", "recipients", len(req.Recipients))

	at, ok := parseDate(body.ScheduledAt)
	if body.ScheduledAt != "" && !ok {
		return h.invalidDate(c, p, req)
	}
	req.ScheduledAt = at

	res, err := h.scheduler.Schedule(c, p, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, scheduleResponse{
		Success:        true,
		Message:        "Emails scheduled successfully",
		ScheduledAt:    res.ScheduledAt,
		RecipientCount: res.RecipientCount,
	})
}

// invalidDate reports an unparsable scheduled_at together with every other
// violation of req.
func (h *Sends) invalidDate(c internal.Context, p identity.Principal, req scheduler.Request) error {
	out := validation.New()
	out.Add("scheduled_at", "The scheduled_at field must be a valid date.")

	_, err := h.scheduler.Validate(c, p, req)
	verr, ok := validation.As(err)
	if err != nil && !ok {
		return err
	}
	for _, field := range verr.Fields() {
		if field == "scheduled_at" {
			continue
		}
		for _, msg := range verr.Get(field) {
			out.Add(field, msg)
		}
	}
	return out
}
