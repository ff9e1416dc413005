// Package migrations embeds the goose SQL migrations of the service.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Dir is the directory inside FS that goose reads from.
const Dir = "."
