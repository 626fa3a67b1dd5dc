// Package migrations chứa SQL schema, embed vào binary cmd/migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
