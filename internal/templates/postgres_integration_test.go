//go:build integration

package templates_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailcraft/internal/templates"
	"github.com/dmitrymomot/mailcraft/migrations"
	"github.com/dmitrymomot/mailcraft/pkg/db"
	"github.com/dmitrymomot/mailcraft/pkg/logger"
)

func newPostgres(t *testing.T) *templates.Postgres {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, db.Config{ConnectionString: url, RetryAttempts: 1, MaxOpenConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool, migrations.FS, "schema_migrations", logger.NewNope()))
	_, err = pool.Exec(ctx, "TRUNCATE email_templates CASCADE")
	require.NoError(t, err)

	return templates.NewPostgres(pool)
}

func TestPostgres(t *testing.T) {
	repo := newPostgres(t)
	svc := templates.NewService(repo)
	ctx := context.Background()

	doc := `{"title":"Promo",  "z":1,"a":[1.50,{"k":"é"}]}`
	draft, err := svc.Save(ctx, alice, templates.SaveInput{Document: json.RawMessage(`{"title":"draft"}`), IsAutosave: true})
	require.NoError(t, err)
	bobDraft, err := svc.Save(ctx, bob, templates.SaveInput{Document: json.RawMessage(`{"title":"bob draft"}`), IsAutosave: true})
	require.NoError(t, err)

	id, err := svc.Save(ctx, alice, templates.SaveInput{Document: json.RawMessage(doc), HTML: "<p>Hi</p>"})
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		tpl, err := svc.Get(ctx, alice, id)
		require.NoError(t, err)
		assert.Equal(t, doc, string(tpl.Content.JSON))
		assert.Equal(t, "<p>Hi</p>", tpl.Content.HTML)
		assert.Equal(t, "Promo", tpl.Name)
	})

	t.Run("explicit save purged own autosave in the same transaction", func(t *testing.T) {
		_, err := svc.Lookup(ctx, draft)
		assert.ErrorIs(t, err, templates.ErrNotFound)
		_, err = svc.Lookup(ctx, bobDraft)
		assert.NoError(t, err)
	})

	t.Run("list and update", func(t *testing.T) {
		require.NoError(t, svc.Rename(ctx, alice, id, "Renamed"))
		require.NoError(t, svc.UpdateSubject(ctx, alice, id, "Subject"))
		assert.ErrorIs(t, svc.Rename(ctx, bob, id, "x"), templates.ErrForbidden)

		list, err := svc.List(ctx, alice)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Renamed", list[0].Name)
		assert.Equal(t, "Subject", list[0].Subject)
	})

	t.Run("stale autosave purge and cascade delete", func(t *testing.T) {
		n, err := repo.DeleteAutosavesBefore(ctx, time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		require.NoError(t, svc.Delete(ctx, alice, id))
		_, err = svc.Get(ctx, alice, id)
		assert.ErrorIs(t, err, templates.ErrNotFound)
		assert.ErrorIs(t, svc.Delete(ctx, alice, id), templates.ErrNotFound)
	})
}
