// Package migrations embeds the schema files run at startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
