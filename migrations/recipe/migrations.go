// Package recipe embeds the recipe context's goose migrations.
package recipe

import "embed"

// Context names the goose version table these migrations are tracked in.
const Context = "recipe"

//go:embed *.sql
var FS embed.FS
