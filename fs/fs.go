// Package appfs exposes assets that ship inside the binary.
package appfs

import "embed"

//go:embed migrations
var Migrations embed.FS
