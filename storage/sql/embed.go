package sql

import "embed"

// SchemaFS contains the SQL migrations under schema/, applied in name order
//
//go:embed schema/*.sql
var SchemaFS embed.FS
