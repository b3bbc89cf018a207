// Package user embeds the user context's goose migrations.
package user

import "embed"

// Context names the goose version table these migrations are tracked in.
const Context = "user"

//go:embed *.sql
var FS embed.FS
