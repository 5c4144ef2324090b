// Package migrations embeds the module's forward-only Postgres DDL.
package migrations

import "embed"

//go:embed postgres/*.up.sql
var Postgres embed.FS
