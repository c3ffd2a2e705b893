package templates

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository stores templates. Implementations return ErrNotFound for
// unknown ids and never apply ownership rules themselves.
type Repository interface {
	// Create stores tpl and content atomically. When purgeAutosaves is set,
	// the same transaction deletes every other autosave template in scope.
	Create(ctx context.Context, tpl Template, content Content, purgeAutosaves bool, scope Scope) error
	Find(ctx context.Context, id uuid.UUID) (*TemplateWithContent, error)
	FindMeta(ctx context.Context, id uuid.UUID) (*Template, error)
	// List returns non-autosave templates in scope, newest first.
	List(ctx context.Context, scope Scope) ([]Template, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string, at time.Time) error
	UpdateSubject(ctx context.Context, id uuid.UUID, subject string, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteAutosavesBefore removes autosave templates created before t.
	DeleteAutosavesBefore(ctx context.Context, t time.Time) (int64, error)
}
