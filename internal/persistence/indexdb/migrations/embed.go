// Package migrations holds the world index schema as goose SQL files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
