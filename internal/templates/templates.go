// Package templates embeds the built-in form templates.
package templates

import (
	"embed"
	"io/fs"
)

//go:embed *.gohtml
var files embed.FS

// FS returns the embedded templates keyed by file name.
func FS() fs.FS {
	return files
}
