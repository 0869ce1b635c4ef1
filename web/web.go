// Package web embeds the board's HTML templates and static assets.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed templates static
var assets embed.FS

// Templates is the template tree; names are paths without the .html extension,
// e.g. "index" or "layouts/base".
func Templates() http.FileSystem {
	return mustSub("templates")
}

// Static serves the files mounted under /static.
func Static() http.FileSystem {
	return mustSub("static")
}

func mustSub(dir string) http.FileSystem {
	sub, err := fs.Sub(assets, dir)
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
