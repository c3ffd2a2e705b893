// Package editor integrates the Beefree design widget.
//
// It hands the browser the widget credentials, exchanges them for a
// short-lived access token and serves the base design document new
// templates start from. The base document is fetched over HTTP and cached
// (seven days by default); tokens are cached per user until shortly before
// they expire.
//
// Upstream failures are reported as *AuthTokenError and *TemplateFetchError
// so the HTTP layer can answer 502 with the upstream message.
package editor
