// Package catalog embeds the built-in challenge content files.
package catalog

import "embed"

// FS embeds the default challenge catalog. A directory override can be
// supplied via configuration for content authoring.
//
//go:embed *.yaml
var FS embed.FS
