package templates

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MaxNameLength bounds template names and subjects, in runes.
const MaxNameLength = 255

// Template is the metadata of a saved design.
type Template struct {
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	OwnerID    string    `json:"owner_id,omitempty"`
	Name       string    `json:"name"`
	Subject    string    `json:"subject"`
	ID         uuid.UUID `json:"id"`
	IsAutosave bool      `json:"is_autosave"`
}

// Content is the design document and its rendered HTML.
// JSON is kept exactly as submitted.
type Content struct {
	JSON       json.RawMessage `json:"content_json"`
	HTML       string          `json:"content_html,omitempty"`
	TemplateID uuid.UUID       `json:"template_id"`
}

// TemplateWithContent is a template together with its content.
type TemplateWithContent struct {
	Content Content `json:"content"`
	Template
}

// Scope selects the templates visible to a caller.
// With Enforce unset every template is visible.
type Scope struct {
	OwnerID string
	Enforce bool
}

// Allows reports whether a template owned by ownerID is visible in s.
func (s Scope) Allows(ownerID string) bool {
	return !s.Enforce || s.OwnerID == ownerID
}

// SaveInput is the payload of Service.Save.
type SaveInput struct {
	// Document is the design as a JSON object, or a JSON string holding one.
	Document   json.RawMessage `json:"json"`
	HTML       string          `json:"html"`
	IsAutosave bool            `json:"is_autosave"`
}
