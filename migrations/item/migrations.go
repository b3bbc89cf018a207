// Package item embeds the item context's goose migrations.
package item

import "embed"

// Context names the goose version table these migrations are tracked in.
const Context = "item"

//go:embed *.sql
var FS embed.FS
