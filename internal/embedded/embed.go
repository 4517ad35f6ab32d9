// Package embedded carries the versioned static tables compiled into trapkit:
// the test-key canonicalization table, model identities, legacy provider
// backfills and the historical rename patch list.
package embedded

import (
	"embed"
)

// DefaultTables is the path of the default identity tables inside FS.
const DefaultTables = "tables/default.yaml"

// FS embeds the identity table files at build time.
//
//go:embed tables/*.yaml
var FS embed.FS
