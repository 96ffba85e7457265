// Package migrations embeds the goose SQL migrations that build the store
// schema. Files are applied in version order; every statement is guarded with
// IF NOT EXISTS so a partially migrated store converges.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
