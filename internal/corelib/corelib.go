// Package corelib embeds the core modules whose top-level declarations are
// visible to every analyzed module without an import.
package corelib

import (
	"embed"
)

//go:embed *.py
var files embed.FS

// Modules lists the default core modules in expansion order.
func Modules() []string {
	return []string{"typing", "builtins"}
}

// Source returns the embedded source of a core module.
func Source(module string) ([]byte, bool) {
	src, err := files.ReadFile(module + ".py")
	if err != nil {
		return nil, false
	}
	return src, true
}
