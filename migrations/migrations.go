// Package migrations embeds the catalog schema applied by database.RunMigrations.
package migrations

import "embed"

// FS holds the *.up.sql files in version order.
//
//go:embed *.sql
var FS embed.FS
