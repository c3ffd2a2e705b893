package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mailcraft/internal"
	"github.com/dmitrymomot/mailcraft/internal/identity"
	"github.com/dmitrymomot/mailcraft/internal/templates"
)

// TemplateService is the template store. *templates.Service implements it.
type TemplateService interface {
	Save(ctx context.Context, p identity.Principal, in templates.SaveInput) (uuid.UUID, error)
	Get(ctx context.Context, p identity.Principal, id uuid.UUID) (*templates.TemplateWithContent, error)
	List(ctx context.Context, p identity.Principal) ([]templates.Template, error)
	Rename(ctx context.Context, p identity.Principal, id uuid.UUID, name string) error
	UpdateSubject(ctx context.Context, p identity.Principal, id uuid.UUID, subject string) error
	Delete(ctx context.Context, p identity.Principal, id uuid.UUID) error
}

// Templates serves /api/templates.
type Templates struct {
	svc TemplateService
}

func NewTemplates(svc TemplateService) *Templates {
	return &Templates{svc: svc}
}

func (h *Templates) Routes(r internal.Router) {
	r.Route("/api/templates", func(r internal.Router) {
		r.GET("/", h.list)
		r.POST("/", h.save)
		r.GET("/{id}", h.get)
		r.PATCH("/{id}/name", h.rename)
		r.PATCH("/{id}/subject", h.updateSubject)
		r.DELETE("/{id}", h.delete)
	})
}

type successResponse struct {
	Success bool `json:"success"`
}

type saveResponse struct {
	Message    string    `json:"message"`
	Success    bool      `json:"success"`
	TemplateID uuid.UUID `json:"template_id"`
}

func (h *Templates) list(c internal.Context) error {
	list, err := h.svc.List(c, identity.FromContext(c))
	if err != nil {
		return err
	}
	if list == nil {
		list = []templates.Template{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Templates) save(c internal.Context) error {
	var in templates.SaveInput
	if err := c.BindJSON(&in); err != nil {
		return err
	}

	id, err := h.svc.Save(c, identity.FromContext(c), in)
	if err != nil {
		return err
	}

	c.LogInfo("template saved", "template_id", id.String(), "autosave", in.IsAutosave)
	return c.JSON(http.StatusOK, saveResponse{
		Success:    true,
		Message:    "Template saved successfully",
		TemplateID: id,
	})
}

func (h *Templates) get(c internal.Context) error {
	id, ok := internal.UUIDParam(c, "id")
	if !ok {
		return templates.ErrNotFound
	}

	tpl, err := h.svc.Get(c, identity.FromContext(c), id)
	if err != nil {
		return err
	}
	return documentJSON(c, http.StatusOK, tpl, &tpl.Content.JSON)
}

func (h *Templates) rename(c internal.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	return h.update(c, &req, func(ctx context.Context, p identity.Principal, id uuid.UUID) error {
		return h.svc.Rename(ctx, p, id, req.Name)
	})
}

func (h *Templates) updateSubject(c internal.Context) error {
	var req struct {
		Subject string `json:"subject"`
	}
	return h.update(c, &req, func(ctx context.Context, p identity.Principal, id uuid.UUID) error {
		return h.svc.UpdateSubject(ctx, p, id, req.Subject)
	})
}

// update binds the body into req, then runs apply against the {id} template.
func (h *Templates) update(c internal.Context, req any, apply func(context.Context, identity.Principal, uuid.UUID) error) error {
	id, ok := internal.UUIDParam(c, "id")
	if !ok {
		return templates.ErrNotFound
	}
	if err := c.BindJSON(req); err != nil {
		return err
	}
	if err := apply(c, identity.FromContext(c), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

func (h *Templates) delete(c internal.Context) error {
	id, ok := internal.UUIDParam(c, "id")
	if !ok {
		return templates.ErrNotFound
	}
	if err := h.svc.Delete(c, identity.FromContext(c), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}
