package templates

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mailcraft/internal/identity"
	"github.com/dmitrymomot/mailcraft/pkg/logger"
	"github.com/dmitrymomot/mailcraft/pkg/metrics"
	"github.com/dmitrymomot/mailcraft/pkg/sanitizer"
	"github.com/dmitrymomot/mailcraft/pkg/validation"
)

const untitledPrefix = "Untitled Template "

// Service applies ownership and validation rules to a Repository.
type Service struct {
	repo    Repository
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	enforce bool
}

// Option configures a Service.
type Option func(*Service)

// WithOwnershipEnforced scopes every call to the principal's templates.
// Default: true.
func WithOwnershipEnforced(enforce bool) Option {
	return func(s *Service) {
		s.enforce = enforce
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a Service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		logger:  logger.NewNope(),
		now:     time.Now,
		enforce: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OwnershipEnforced reports whether calls are scoped to the principal.
func (s *Service) OwnershipEnforced() bool {
	return s.enforce
}

func (s *Service) scope(p identity.Principal) Scope {
	return Scope{OwnerID: p.ID, Enforce: s.enforce}
}

// Save stores a new template with its content. An explicit save removes
// the autosaves in the principal's scope within the same transaction.
func (s *Service) Save(ctx context.Context, p identity.Principal, in SaveInput) (uuid.UUID, error) {
	doc, verr := parseDocument(in.Document)
	if verr != nil {
		return uuid.Nil, verr.Err()
	}

	now := s.now().UTC()
	name := documentTitle(doc)
	if name == "" {
		name = untitledPrefix + now.Format("2006-01-02 15:04")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("templates: generate id: %w", err)
	}

	tpl := Template{
		ID:         id,
		OwnerID:    p.ID,
		Name:       name,
		Subject:    name,
		IsAutosave: in.IsAutosave,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	content := Content{TemplateID: id, JSON: doc, HTML: in.HTML}

	if err := s.repo.Create(ctx, tpl, content, !in.IsAutosave, s.scope(p)); err != nil {
		return uuid.Nil, err
	}

	s.metrics.TemplateSaved(in.IsAutosave)
	s.logger.DebugContext(ctx, "template saved",
		slog.String("template_id", id.String()),
		slog.Bool("autosave", in.IsAutosave),
	)
	return id, nil
}

// Get returns a template with its content. Templates outside the
// principal's scope are reported as ErrNotFound.
func (s *Service) Get(ctx context.Context, p identity.Principal, id uuid.UUID) (*TemplateWithContent, error) {
	tpl, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.scope(p).Allows(tpl.OwnerID) {
		return nil, ErrNotFound
	}
	return tpl, nil
}

// Lookup returns a template regardless of ownership.
// It serves background tasks that run without a principal.
func (s *Service) Lookup(ctx context.Context, id uuid.UUID) (*TemplateWithContent, error) {
	return s.repo.Find(ctx, id)
}

// List returns the principal's non-autosave templates, newest first.
func (s *Service) List(ctx context.Context, p identity.Principal) ([]Template, error) {
	return s.repo.List(ctx, s.scope(p))
}

// Rename changes the template name.
func (s *Service) Rename(ctx context.Context, p identity.Principal, id uuid.UUID, name string) error {
	name, err := cleanLine("name", name)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, p, id); err != nil {
		return err
	}
	return s.repo.UpdateName(ctx, id, name, s.now().UTC())
}

// UpdateSubject changes the default email subject of the template.
func (s *Service) UpdateSubject(ctx context.Context, p identity.Principal, id uuid.UUID, subject string) error {
	subject, err := cleanLine("subject", subject)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, p, id); err != nil {
		return err
	}
	return s.repo.UpdateSubject(ctx, id, subject, s.now().UTC())
}

// Delete removes the template and its content.
func (s *Service) Delete(ctx context.Context, p identity.Principal, id uuid.UUID) error {
	if err := s.authorize(ctx, p, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// PurgeStaleAutosaves deletes autosaves older than olderThan in every scope.
func (s *Service) PurgeStaleAutosaves(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.repo.DeleteAutosavesBefore(ctx, s.now().Add(-olderThan))
}

// authorize returns ErrNotFound for unknown templates and ErrForbidden
// for templates owned by someone else.
func (s *Service) authorize(ctx context.Context, p identity.Principal, id uuid.UUID) error {
	tpl, err := s.repo.FindMeta(ctx, id)
	if err != nil {
		return err
	}
	if !s.scope(p).Allows(tpl.OwnerID) {
		return ErrForbidden
	}
	return nil
}

// parseDocument accepts a JSON object, or a JSON string whose content is a
// JSON object, and returns the object bytes unchanged.
func parseDocument(raw json.RawMessage) (json.RawMessage, *validation.Errors) {
	doc := bytes.TrimSpace(raw)
	if len(doc) == 0 || bytes.Equal(doc, []byte("null")) {
		return nil, fieldError("json", "The json field is required.")
	}

	if doc[0] == '"' {
		var inner string
		if err := json.Unmarshal(doc, &inner); err != nil {
			return nil, fieldError("json", "Invalid JSON data")
		}
		doc = bytes.TrimSpace([]byte(inner))
	}

	if !json.Valid(doc) {
		return nil, fieldError("json", "Invalid JSON data")
	}
	if len(doc) == 0 || doc[0] != '{' {
		return nil, fieldError("json", "The json field must be a valid JSON object")
	}
	return json.RawMessage(doc), nil
}

// documentTitle returns the sanitised top-level "title" of the document.
func documentTitle(doc json.RawMessage) string {
	var head struct {
		Title any `json:"title"`
	}
	if err := json.Unmarshal(doc, &head); err != nil {
		return ""
	}
	title, ok := head.Title.(string)
	if !ok {
		return ""
	}
	return sanitizer.Line(title, MaxNameLength)
}

func cleanLine(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if verr := validation.Var(field, value, fmt.Sprintf("required,max=%d", MaxNameLength)); verr != nil {
		return "", verr.Err()
	}
	cleaned := sanitizer.Line(value, MaxNameLength)
	if cleaned == "" {
		return "", fieldError(field, fmt.Sprintf("The %s field is required.", field)).Err()
	}
	return cleaned, nil
}

func fieldError(field, msg string) *validation.Errors {
	verr := validation.New()
	verr.Add(field, msg)
	return verr
}
