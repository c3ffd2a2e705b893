package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/dmitrymomot/mailcraft/internal/identity"
	"github.com/dmitrymomot/mailcraft/internal/templates"
	"github.com/dmitrymomot/mailcraft/pkg/cache"
	"github.com/dmitrymomot/mailcraft/pkg/logger"
	"github.com/dmitrymomot/mailcraft/pkg/sanitizer"
)

const (
	defaultAuthURL     = "https://auth.getbee.io/loginV2"
	defaultTemplateTTL = 7 * 24 * time.Hour

	baseDocumentKey = "beefree_template"
	maxDocumentSize = 8 << 20

	// tokenLeeway drops cached tokens this long before they expire.
	tokenLeeway = 30 * time.Second
	// untimedTokenTTL caches tokens the auth server issued without expires_in.
	untimedTokenTTL = 5 * time.Minute
)

// TemplateSource reads saved templates. *templates.Service implements it.
type TemplateSource interface {
	Get(ctx context.Context, p identity.Principal, id uuid.UUID) (*templates.TemplateWithContent, error)
}

// Credentials are handed to the browser to boot the widget.
type Credentials struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	UID          string `json:"uid"`
}

// Token is a widget access token.
type Token struct {
	ExpiresAt   time.Time `json:"expires_at,omitzero"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
}

// Session is everything the widget needs to open a document.
type Session struct {
	TemplateID  *uuid.UUID      `json:"template_id,omitempty"`
	Credentials Credentials     `json:"credentials"`
	Document    json.RawMessage `json:"template"`
}

// Editor talks to the widget's auth server and base document provider.
type Editor struct {
	cfg        Config
	httpClient *http.Client
	documents  cache.Cache[json.RawMessage]
	tokens     *cache.Memory[Token]
	templates  TemplateSource
	logger     *slog.Logger
	now        func() time.Time
	closers    []func() error
}

// New creates an Editor. Call Close to release the in-process caches.
func New(cfg Config, opts ...Option) (*Editor, error) {
	if cfg.ClientID == "" {
		return nil, ErrMissingClientID
	}
	if cfg.ClientSecret == "" {
		return nil, ErrMissingClientSecret
	}
	if cfg.TemplateURL == "" {
		return nil, ErrMissingTemplateURL
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = defaultAuthURL
	}
	if cfg.TemplateTTL <= 0 {
		cfg.TemplateTTL = defaultTemplateTTL
	}

	e := &Editor{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger.NewNope(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.tokens = cache.NewMemory[Token](cache.WithClock(e.now))
	e.closers = append(e.closers, e.tokens.Close)
	if e.documents == nil {
		docs := cache.NewMemory[json.RawMessage](cache.WithClock(e.now))
		e.documents = docs
		e.closers = append(e.closers, docs.Close)
	}
	return e, nil
}

// Close stops the caches the Editor created itself.
func (e *Editor) Close() error {
	var errs []error
	for _, fn := range e.closers {
		errs = append(errs, fn())
	}
	return errors.Join(errs...)
}

// Credentials returns the widget credentials for p.
func (e *Editor) Credentials(p identity.Principal) Credentials {
	return Credentials{
		ClientID:     e.cfg.ClientID,
		ClientSecret: e.cfg.ClientSecret,
		UID:          uid(p),
	}
}

func uid(p identity.Principal) string {
	if p.Anonymous() {
		return "user_anonymous"
	}
	return "user_" + p.ID
}

// AuthToken exchanges the credentials of p for an access token.
// Tokens are reused per user until shortly before they expire.
func (e *Editor) AuthToken(ctx context.Context, p identity.Principal) (*Token, error) {
	key := uid(p)
	if tok, err := e.tokens.Get(ctx, key); err == nil {
		return &tok, nil
	}

	cc := clientcredentials.Config{
		ClientID:       e.cfg.ClientID,
		ClientSecret:   e.cfg.ClientSecret,
		TokenURL:       e.cfg.AuthURL,
		EndpointParams: url.Values{"uid": {key}},
		AuthStyle:      oauth2.AuthStyleInParams,
	}

	raw, err := cc.Token(context.WithValue(ctx, oauth2.HTTPClient, e.httpClient))
	if err != nil {
		return nil, authTokenError(err)
	}

	tok := Token{
		AccessToken: raw.AccessToken,
		TokenType:   raw.Type(),
		ExpiresAt:   raw.Expiry,
	}

	ttl := untimedTokenTTL
	if !tok.ExpiresAt.IsZero() {
		ttl = tok.ExpiresAt.Sub(e.now()) - tokenLeeway
	}
	if ttl > 0 {
		_ = e.tokens.Set(ctx, key, tok, ttl)
	}

	e.logger.DebugContext(ctx, "editor token issued", slog.String("uid", key))
	return &tok, nil
}

func authTokenError(err error) *AuthTokenError {
	out := &AuthTokenError{Err: err, Message: "token request failed"}

	var rerr *oauth2.RetrieveError
	if !errors.As(err, &rerr) {
		return out
	}
	if rerr.Response != nil {
		out.StatusCode = rerr.Response.StatusCode
	}
	switch {
	case rerr.ErrorDescription != "":
		out.Message = rerr.ErrorDescription
	case rerr.ErrorCode != "":
		out.Message = rerr.ErrorCode
	case len(rerr.Body) > 0:
		out.Message = sanitizer.Truncate(string(rerr.Body), 200)
	}
	return out
}

// BaseDocument returns the design document new templates start from.
// Concurrent misses share one upstream request.
func (e *Editor) BaseDocument(ctx context.Context) (json.RawMessage, error) {
	key := baseDocumentKey + ":" + e.cfg.TemplateURL
	return cache.GetOrSet(ctx, e.documents, key, func(ctx context.Context) (json.RawMessage, time.Duration, error) {
		doc, err := e.fetchBaseDocument(ctx)
		return doc, e.cfg.TemplateTTL, err
	})
}

func (e *Editor) fetchBaseDocument(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.cfg.TemplateURL, nil)
	if err != nil {
		return nil, &TemplateFetchError{Err: err, Message: "invalid template URL"}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, &TemplateFetchError{Err: err, Message: "template provider unreachable"}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TemplateFetchError{
			StatusCode: resp.StatusCode,
			Message:    "Failed to fetch template",
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, &TemplateFetchError{Err: err, Message: "read template response"}
	}
	if !json.Valid(body) {
		return nil, &TemplateFetchError{StatusCode: resp.StatusCode, Message: "template provider returned invalid JSON"}
	}

	e.logger.InfoContext(ctx, "base template fetched", slog.Int("bytes", len(body)))
	return json.RawMessage(body), nil
}

// Session returns the credentials of p and the document to open: the saved
// template when templateID names one p can read, the base document otherwise.
func (e *Editor) Session(ctx context.Context, p identity.Principal, templateID string) (*Session, error) {
	s := &Session{Credentials: e.Credentials(p)}

	if templateID != "" && e.templates != nil {
		doc, id, err := e.savedDocument(ctx, p, templateID)
		if err != nil {
			return nil, err
		}
		if doc != nil {
			s.Document = doc
			s.TemplateID = &id
			return s, nil
		}
		e.logger.WarnContext(ctx, "template not found or has no content",
			slog.String("template_id", templateID),
		)
	}

	doc, err := e.BaseDocument(ctx)
	if err != nil {
		return nil, err
	}
	s.Document = doc
	return s, nil
}

// savedDocument returns nil without error when the template is missing,
// unreadable by p or empty.
func (e *Editor) savedDocument(ctx context.Context, p identity.Principal, raw string) (json.RawMessage, uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, uuid.Nil, nil
	}

	tpl, err := e.templates.Get(ctx, p, id)
	switch {
	case errors.Is(err, templates.ErrNotFound), errors.Is(err, templates.ErrForbidden):
		return nil, uuid.Nil, nil
	case err != nil:
		return nil, uuid.Nil, fmt.Errorf("editor: load template: %w", err)
	}
	if len(tpl.Content.JSON) == 0 {
		return nil, uuid.Nil, nil
	}
	return tpl.Content.JSON, id, nil
}
