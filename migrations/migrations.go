// Package migrations embeds the goose SQL migrations of the service schema.
// River creates its own tables through rivermigrate when the job manager starts.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
