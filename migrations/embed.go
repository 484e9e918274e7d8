// Package migrations embeds the PostgreSQL schema migrations so the binary
// can bring a database up to date without a migrations directory on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
