package scheduler

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// TaskName is the registered name of DeliveryTask.
	TaskName = "deliver_email"
	// Queue is the River queue delivery tasks run on.
	Queue = "email"
)

// Request asks for a template to be sent to each recipient.
type Request struct {
	ScheduledAt time.Time `json:"scheduled_at"`
	TemplateID  string    `json:"template_id" validate:"required,uuid"`
	// HTML overrides the stored template HTML.
	HTML    string `json:"html_content"`
	Subject string `json:"subject"`
	// SubjectOverride wins over every other subject source.
	SubjectOverride string   `json:"subject_override"`
	Recipients      []string `json:"recipients" validate:"required,min=1,dive,required,email"`
}

// Result describes an accepted request.
type Result struct {
	ScheduledAt    time.Time `json:"scheduled_at"`
	RecipientCount int       `json:"recipient_count"`
}

// Address is a mailbox with an optional display name.
type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// DeliveryPayload is the River job payload of one delivery.
type DeliveryPayload struct {
	ScheduledAt  time.Time `json:"scheduled_at"`
	ReplyTo      *Address  `json:"reply_to,omitempty"`
	Recipient    string    `json:"recipient"`
	Subject      string    `json:"subject"`
	HTMLOverride string    `json:"html_override,omitempty"`
	TemplateID   uuid.UUID `json:"template_id"`
}

// firstNonBlank returns the first candidate that is not blank, trimmed.
// Subjects resolve as override, request subject, template subject, template name.
func firstNonBlank(candidates ...string) string {
	for _, s := range candidates {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}
