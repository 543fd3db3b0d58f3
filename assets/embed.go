package assets

import (
	"embed"
	"io/fs"
)

//go:embed web
var FS embed.FS

// Web returns the static web UI rooted at web/.
func Web() fs.FS {
	sub, err := fs.Sub(FS, "web")
	if err != nil {
		panic(err)
	}
	return sub
}
