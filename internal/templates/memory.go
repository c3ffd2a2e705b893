package templates

import (
	"bytes"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Repository for tests.
type Memory struct {
	templates map[uuid.UUID]*TemplateWithContent
	mu        sync.RWMutex
}

// NewMemory creates an empty Memory repository.
func NewMemory() *Memory {
	return &Memory{templates: make(map[uuid.UUID]*TemplateWithContent)}
}

var _ Repository = (*Memory)(nil)

func (m *Memory) Create(_ context.Context, tpl Template, content Content, purgeAutosaves bool, scope Scope) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	content.TemplateID = tpl.ID
	content.JSON = bytes.Clone(content.JSON)
	m.templates[tpl.ID] = &TemplateWithContent{Template: tpl, Content: content}

	if purgeAutosaves {
		for id, t := range m.templates {
			if id != tpl.ID && t.IsAutosave && (!scope.Enforce || t.OwnerID == scope.OwnerID) {
				delete(m.templates, id)
			}
		}
	}
	return nil
}

func (m *Memory) Find(_ context.Context, id uuid.UUID) (*TemplateWithContent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.templates[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *t
	out.Content.JSON = bytes.Clone(t.Content.JSON)
	return &out, nil
}

func (m *Memory) FindMeta(_ context.Context, id uuid.UUID) (*Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.templates[id]
	if !ok {
		return nil, ErrNotFound
	}
	tpl := t.Template
	return &tpl, nil
}

func (m *Memory) List(_ context.Context, scope Scope) ([]Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]Template, 0, len(m.templates))
	for _, t := range m.templates {
		if t.IsAutosave || !scope.Allows(t.OwnerID) {
			continue
		}
		list = append(list, t.Template)
	}

	slices.SortFunc(list, func(a, b Template) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return bytes.Compare(b.ID[:], a.ID[:])
	})
	return list, nil
}

func (m *Memory) UpdateName(_ context.Context, id uuid.UUID, name string, at time.Time) error {
	return m.update(id, func(t *Template) {
		t.Name = name
		t.UpdatedAt = at
	})
}

func (m *Memory) UpdateSubject(_ context.Context, id uuid.UUID, subject string, at time.Time) error {
	return m.update(id, func(t *Template) {
		t.Subject = subject
		t.UpdatedAt = at
	})
}

func (m *Memory) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.templates[id]; !ok {
		return ErrNotFound
	}
	delete(m.templates, id)
	return nil
}

func (m *Memory) DeleteAutosavesBefore(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, t := range m.templates {
		if t.IsAutosave && t.CreatedAt.Before(before) {
			delete(m.templates, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored templates, autosaves included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.templates)
}

func (m *Memory) update(id uuid.UUID, fn func(*Template)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.templates[id]
	if !ok {
		return ErrNotFound
	}
	fn(&t.Template)
	return nil
}
