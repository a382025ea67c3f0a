// Package embedded provides embedded static assets for the application.
package embedded

import (
	"embed"
)

// Files contains all files embedded in the Go binary:
// - schema/ - SQLite schema applied at startup
// - seed/   - reference-data CSVs imported when tables are empty
//
// Keeping both in the binary lets the server start on a blank data
// directory without any external provisioning step.
//
//go:embed schema seed
var Files embed.FS
