// Package migrations embeds the goose SQL migrations for the postgres schema.
package migrations

import "embed"

// FS holds every migration file. Pass it to goose.SetBaseFS and use "." as the directory.
//
//go:embed *.sql
var FS embed.FS
