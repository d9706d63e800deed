// Package public embeds the static files served under /static.
package public

import (
	"embed"
	"io/fs"
)

//go:embed static
var static embed.FS

// FS returns the static files rooted at the static directory.
func FS() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
