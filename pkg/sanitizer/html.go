// Package sanitizer turns untrusted markup into safe plain text.
package sanitizer

import (
	"html"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

var strictPolicy = sync.OnceValue(func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	// Keep word boundaries where block elements are removed.
	p.AddSpaceWhenStrippingTag(true)
	return p
})

// PlainText strips all markup, decodes entities and collapses whitespace.
// Script and style contents are dropped.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	text := html.UnescapeString(strictPolicy().Sanitize(s))
	return strings.Join(strings.Fields(text), " ")
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// Line returns PlainText(s) in NFC form limited to n runes, for names and
// subjects. Composed form keeps the rune limit stable for accented text.
func Line(s string, n int) string {
	return strings.TrimSpace(Truncate(norm.NFC.String(PlainText(s)), n))
}
