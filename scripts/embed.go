// Package scripts embeds the default discriminator overrides. Each
// discriminators/<kind>.risor file replaces the match rule of every node
// candidate of that kind.
package scripts

import (
	"embed"
	"io/fs"
)

//go:embed discriminators/*.risor
var FS embed.FS

// Discriminators returns the embedded scripts rooted at their directory, in
// the layout the runtime loads from disk.
func Discriminators() fs.FS {
	sub, err := fs.Sub(FS, "discriminators")
	if err != nil {
		panic(err)
	}
	return sub
}
