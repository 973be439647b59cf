// Package migrations embeds the goose SQL migrations of the circulation schema,
// so the migrate command and the integration tests apply the same files.
package migrations

import "embed"

// FS holds all *.sql migrations.
//
//go:embed *.sql
var FS embed.FS
