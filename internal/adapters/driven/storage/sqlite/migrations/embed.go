// Package migrations embeds the SQL schema migrations applied by the
// SQLite store on startup.
package migrations

import "embed"

// FS holds the numbered .sql migration files, applied in order.
//
//go:embed *.sql
var FS embed.FS
