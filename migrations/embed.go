// Package migrations holds the postgres schema migrations, embedded so the
// migrate command works without the source tree.
package migrations

import "embed"

// FS contains every *.sql migration in this directory
//
//go:embed *.sql
var FS embed.FS
