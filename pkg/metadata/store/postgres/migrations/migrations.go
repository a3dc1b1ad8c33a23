// Package migrations embeds the SQL migration files so the binary can
// manage its own schema without shipping loose files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
