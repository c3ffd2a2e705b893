package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mailcraft/internal"
	"github.com/dmitrymomot/mailcraft/internal/editor"
	"github.com/dmitrymomot/mailcraft/internal/identity"
	"github.com/dmitrymomot/mailcraft/internal/templates"
	"github.com/dmitrymomot/mailcraft/pkg/validation"
)

// EditorService boots the design widget. *editor.Editor implements it.
type EditorService interface {
	Session(ctx context.Context, p identity.Principal, templateID string) (*editor.Session, error)
	AuthToken(ctx context.Context, p identity.Principal) (*editor.Token, error)
}

// TemplateReader resolves templates for the continue step.
type TemplateReader interface {
	Get(ctx context.Context, p identity.Principal, id uuid.UUID) (*templates.TemplateWithContent, error)
}

// Editor serves /api/editor.
type Editor struct {
	editor    EditorService
	templates TemplateReader
}

func NewEditor(e EditorService, t TemplateReader) *Editor {
	return &Editor{editor: e, templates: t}
}

func (h *Editor) Routes(r internal.Router) {
	r.Route("/api/editor", func(r internal.Router) {
		r.GET("/credentials", h.credentials)
		r.POST("/token", h.token)
		r.POST("/next", h.next)
	})
}

type credentialsResponse struct {
	*editor.Session
	Message string `json:"message"`
}

func (h *Editor) credentials(c internal.Context) error {
	s, err := h.editor.Session(c, identity.FromContext(c), c.Query("template_id"))
	if err != nil {
		return err
	}
	return documentJSON(c, http.StatusOK, credentialsResponse{Session: s, Message: "Template loaded"}, &s.Document)
}

func (h *Editor) token(c internal.Context) error {
	tok, err := h.editor.AuthToken(c, identity.FromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tok)
}

type nextResponse struct {
	RedirectURL string `json:"redirect_url"`
}

// next checks that the edited template exists and points the browser at
// the send step.
func (h *Editor) next(c internal.Context) error {
	var req struct {
		TemplateID string `json:"template_id" validate:"required,uuid"`
	}
	if err := c.BindJSON(&req); err != nil {
		return err
	}
	if err := validation.Struct(req).Err(); err != nil {
		return err
	}

	id := uuid.MustParse(req.TemplateID)
	if _, err := h.templates.Get(c, identity.FromContext(c), id); err != nil {
		if errors.Is(err, templates.ErrNotFound) {
			out := validation.New()
			out.Add("template_id", "The selected template_id is invalid.")
			return out
		}
		return err
	}

	c.LogInfo("next step initiated", "template_id", id.String())
	return c.JSON(http.StatusOK, nextResponse{RedirectURL: fmt.Sprintf("/templates/%s/continue", id)})
}
