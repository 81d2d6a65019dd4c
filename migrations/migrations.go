// Package migrations embeds the schema for both stores. Files are applied
// in name order and every statement is idempotent.
package migrations

import "embed"

//go:embed postgres/*.sql clickhouse/*.sql
var FS embed.FS
