package handlers

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mailcraft/internal"
)

// documentJSON renders v as JSON with *doc spliced in byte for byte.
// encoding/json compacts and HTML-escapes raw messages, which would alter the
// stored design document on its way back to the widget.
func documentJSON(c internal.Context, code int, v any, doc *json.RawMessage) error {
	original := *doc
	if len(original) == 0 || !json.Valid(original) {
		return c.JSON(code, v)
	}

	marker := json.RawMessage(strconv.Quote("document:" + uuid.NewString()))
	*doc = marker
	body, err := json.Marshal(v)
	*doc = original
	if err != nil {
		return err
	}

	body = bytes.Replace(body, marker, original, 1)
	return c.Blob(code, "application/json; charset=utf-8", append(body, '\n'))
}
