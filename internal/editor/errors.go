package editor

import (
	"errors"
	"fmt"
)

var (
	ErrMissingClientID     = errors.New("editor: missing client ID")
	ErrMissingClientSecret = errors.New("editor: missing client secret")
	ErrMissingTemplateURL  = errors.New("editor: missing template URL")
)

// AuthTokenError reports a failed token exchange with the widget auth server.
type AuthTokenError struct {
	Err error
	// Message is the upstream explanation, safe to show to the client.
	Message string
	// StatusCode is the upstream HTTP status, zero when no response arrived.
	StatusCode int
}

func (e *AuthTokenError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("editor: auth token exchange failed with status %d: %s", e.StatusCode, e.Message)
	}
	return "editor: auth token exchange failed: " + e.Message
}

func (e *AuthTokenError) Unwrap() error {
	return e.Err
}

// TemplateFetchError reports a failure to load the base design document.
type TemplateFetchError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *TemplateFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("editor: fetch base template failed with status %d: %s", e.StatusCode, e.Message)
	}
	return "editor: fetch base template failed: " + e.Message
}

func (e *TemplateFetchError) Unwrap() error {
	return e.Err
}

// UpstreamMessage returns the client-facing message of an upstream error,
// or false when err is not one.
func UpstreamMessage(err error) (string, bool) {
	var authErr *AuthTokenError
	if errors.As(err, &authErr) {
		return authErr.Message, true
	}
	var fetchErr *TemplateFetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Message, true
	}
	return "", false
}
