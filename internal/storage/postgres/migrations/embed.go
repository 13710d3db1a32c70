// Package migrations embeds the SQL schema scripts for the PostgreSQL stores.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
