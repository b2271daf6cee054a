// Package migrations embeds the SQL migrations applied by cmd/migration.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
