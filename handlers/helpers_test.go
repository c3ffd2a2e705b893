package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailcraft/handlers"
	"github.com/dmitrymomot/mailcraft/internal"
	"github.com/dmitrymomot/mailcraft/internal/editor"
	"github.com/dmitrymomot/mailcraft/internal/identity"
	"github.com/dmitrymomot/mailcraft/internal/scheduler"
	"github.com/dmitrymomot/mailcraft/internal/templates"
	"github.com/dmitrymomot/mailcraft/pkg/job"
)

var (
	now   = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	alice = identity.Principal{ID: "alice", Email: "alice@example.com", Name: "Alice"}
	bob   = identity.Principal{ID: "bob", Email: "bob@example.com"}
)

// fakeQueue records enqueued batches.
type fakeQueue struct {
	err     error
	batches [][]any
	mu      sync.Mutex
}

func (q *fakeQueue) EnqueueBatch(_ context.Context, _ string, payloads []any, _ ...job.EnqueueOption) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.batches = append(q.batches, payloads)
	return nil
}

func (q *fakeQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, b := range q.batches {
		n += len(b)
	}
	return n
}

// fakeEditor stands in for the design widget provider.
type fakeEditor struct {
	session *editor.Session
	token   *editor.Token
	err     error
	gotID   string
}

func (e *fakeEditor) Session(_ context.Context, _ identity.Principal, templateID string) (*editor.Session, error) {
	e.gotID = templateID
	return e.session, e.err
}

func (e *fakeEditor) AuthToken(context.Context, identity.Principal) (*editor.Token, error) {
	return e.token, e.err
}

type env struct {
	app    *internal.App
	svc    *templates.Service
	queue  *fakeQueue
	editor *fakeEditor
}

// asUser injects p as the request principal.
func asUser(p identity.Principal) internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if !p.Anonymous() {
				c.Set(identity.ContextKey{}, p)
			}
			return next(c)
		}
	}
}

func newEnv(t *testing.T, p identity.Principal, enforce bool) *env {
	t.Helper()

	svc := templates.NewService(templates.NewMemory(),
		templates.WithOwnershipEnforced(enforce),
		templates.WithClock(func() time.Time { return now }),
	)
	queue := &fakeQueue{}
	sched := scheduler.New(svc, queue, scheduler.WithClock(func() time.Time { return now }))
	ed := &fakeEditor{}

	app := internal.New(
		internal.WithMiddleware(asUser(p)),
		internal.WithErrorHandler(handlers.ErrorHandler),
		internal.WithHandlers(
			handlers.NewTemplates(svc),
			handlers.NewSends(sched),
			handlers.NewEditor(ed, svc),
		),
	)
	return &env{app: app, svc: svc, queue: queue, editor: ed}
}

// do sends a request with an optional JSON body and decodes the JSON reply.
func (e *env) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			r = bytes.NewReader(raw)
		}
	}

	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.app.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

// raw sends a bodiless request and returns the recorder.
func (e *env) raw(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	e.app.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func (e *env) saveTemplate(t *testing.T, p identity.Principal, doc, html string) string {
	t.Helper()

	id, err := e.svc.Save(context.Background(), p, templates.SaveInput{
		Document: json.RawMessage(doc),
		HTML:     html,
	})
	require.NoError(t, err)
	return id.String()
}

// fieldErrors returns the "errors" object of a failure envelope.
func fieldErrors(t *testing.T, body map[string]any) map[string]any {
	t.Helper()

	errs, ok := body["errors"].(map[string]any)
	require.True(t, ok, "missing errors in %v", body)
	return errs
}

func statusOK(t *testing.T, code int) {
	t.Helper()
	require.Equal(t, http.StatusOK, code)
}
