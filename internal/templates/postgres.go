package templates

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/mailcraft/pkg/db"
)

const (
	insertTemplateSQL = `
INSERT INTO email_templates (id, owner_id, name, subject, is_autosave, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	// content_json is a json column; text in and text out keeps the bytes intact.
	insertContentSQL = `
INSERT INTO email_template_contents (template_id, content_json, content_html)
VALUES ($1, $2::json, $3)`

	purgeOwnerAutosavesSQL = `
DELETE FROM email_templates
WHERE is_autosave AND id <> $1 AND owner_id IS NOT DISTINCT FROM $2`

	purgeAllAutosavesSQL = `
DELETE FROM email_templates
WHERE is_autosave AND id <> $1`

	templateColumns = `t.id, t.owner_id, t.name, t.subject, t.is_autosave, t.created_at, t.updated_at`

	findSQL = `
SELECT ` + templateColumns + `, c.content_json::text, c.content_html
FROM email_templates t
JOIN email_template_contents c ON c.template_id = t.id
WHERE t.id = $1`

	findMetaSQL = `SELECT ` + templateColumns + ` FROM email_templates t WHERE t.id = $1`

	listOwnerSQL = `
SELECT ` + templateColumns + ` FROM email_templates t
WHERE NOT t.is_autosave AND t.owner_id IS NOT DISTINCT FROM $1
ORDER BY t.created_at DESC, t.id DESC`

	listAllSQL = `
SELECT ` + templateColumns + ` FROM email_templates t
WHERE NOT t.is_autosave
ORDER BY t.created_at DESC, t.id DESC`

	updateNameSQL    = `UPDATE email_templates SET name = $2, updated_at = $3 WHERE id = $1`
	updateSubjectSQL = `UPDATE email_templates SET subject = $2, updated_at = $3 WHERE id = $1`
	deleteSQL        = `DELETE FROM email_templates WHERE id = $1`

	deleteStaleAutosavesSQL = `DELETE FROM email_templates WHERE is_autosave AND created_at < $1`
)

// Postgres is the pgx-backed Repository.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres repository.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

var _ Repository = (*Postgres)(nil)

func (p *Postgres) Create(ctx context.Context, tpl Template, content Content, purgeAutosaves bool, scope Scope) error {
	err := db.WithTx(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertTemplateSQL,
			tpl.ID, nullString(tpl.OwnerID), tpl.Name, tpl.Subject, tpl.IsAutosave, tpl.CreatedAt, tpl.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert template: %w", err)
		}

		if _, err := tx.Exec(ctx, insertContentSQL, tpl.ID, string(content.JSON), nullString(content.HTML)); err != nil {
			return fmt.Errorf("insert content: %w", err)
		}

		if !purgeAutosaves {
			return nil
		}

		var err error
		if scope.Enforce {
			_, err = tx.Exec(ctx, purgeOwnerAutosavesSQL, tpl.ID, nullString(scope.OwnerID))
		} else {
			_, err = tx.Exec(ctx, purgeAllAutosavesSQL, tpl.ID)
		}
		if err != nil {
			return fmt.Errorf("purge autosaves: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("templates: create: %w", err)
	}
	return nil
}

func (p *Postgres) Find(ctx context.Context, id uuid.UUID) (*TemplateWithContent, error) {
	var (
		out  TemplateWithContent
		doc  string
		html *string
	)
	row := p.pool.QueryRow(ctx, findSQL, id)
	if err := scanTemplate(row, &out.Template, &doc, &html); err != nil {
		return nil, wrapQueryErr("find", err)
	}

	out.Content = Content{TemplateID: out.ID, JSON: []byte(doc)}
	if html != nil {
		out.Content.HTML = *html
	}
	return &out, nil
}

func (p *Postgres) FindMeta(ctx context.Context, id uuid.UUID) (*Template, error) {
	var tpl Template
	if err := scanTemplate(p.pool.QueryRow(ctx, findMetaSQL, id), &tpl); err != nil {
		return nil, wrapQueryErr("find meta", err)
	}
	return &tpl, nil
}

func (p *Postgres) List(ctx context.Context, scope Scope) ([]Template, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if scope.Enforce {
		rows, err = p.pool.Query(ctx, listOwnerSQL, nullString(scope.OwnerID))
	} else {
		rows, err = p.pool.Query(ctx, listAllSQL)
	}
	if err != nil {
		return nil, fmt.Errorf("templates: list: %w", err)
	}

	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Template, error) {
		var tpl Template
		err := scanTemplate(row, &tpl)
		return tpl, err
	})
	if err != nil {
		return nil, fmt.Errorf("templates: list: %w", err)
	}
	return list, nil
}

func (p *Postgres) UpdateName(ctx context.Context, id uuid.UUID, name string, at time.Time) error {
	return p.execOne(ctx, "update name", updateNameSQL, id, name, at)
}

func (p *Postgres) UpdateSubject(ctx context.Context, id uuid.UUID, subject string, at time.Time) error {
	return p.execOne(ctx, "update subject", updateSubjectSQL, id, subject, at)
}

func (p *Postgres) Delete(ctx context.Context, id uuid.UUID) error {
	return p.execOne(ctx, "delete", deleteSQL, id)
}

func (p *Postgres) DeleteAutosavesBefore(ctx context.Context, t time.Time) (int64, error) {
	tag, err := p.pool.Exec(ctx, deleteStaleAutosavesSQL, t)
	if err != nil {
		return 0, fmt.Errorf("templates: purge stale autosaves: %w", err)
	}
	return tag.RowsAffected(), nil
}

// execOne runs a statement that must touch exactly one template.
func (p *Postgres) execOne(ctx context.Context, op, sql string, args ...any) error {
	tag, err := p.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("templates: %s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTemplate(row pgx.Row, tpl *Template, extra ...any) error {
	var owner *string
	dest := append([]any{
		&tpl.ID, &owner, &tpl.Name, &tpl.Subject, &tpl.IsAutosave, &tpl.CreatedAt, &tpl.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return err
	}
	if owner != nil {
		tpl.OwnerID = *owner
	}
	return nil
}

func wrapQueryErr(op string, err error) error {
	if db.IsNotFound(err) {
		return ErrNotFound
	}
	return fmt.Errorf("templates: %s: %w", op, err)
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
