// Package migrations embeds the SQL schema migrations for every supported database.
package migrations

import "embed"

// FS holds one directory of golang-migrate files per dialect: postgresql, mysql and sqlite.
//
//go:embed postgresql/*.sql mysql/*.sql sqlite/*.sql
var FS embed.FS
