package views

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
	"path"
)

//go:embed static/*
var staticFS embed.FS

// Assets returns a handler for the stylesheets linked from the page layout.
//
// When dir names an existing directory, files are served from disk so they
// can be edited without a rebuild. Otherwise the embedded copies are used.
// Directories are never listed; unknown files are 404.
func Assets(dir string) http.Handler {
	var fileSystem http.FileSystem

	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			fileSystem = http.Dir(dir)
		}
	}

	if fileSystem == nil {
		sub, err := fs.Sub(staticFS, "static")
		if err != nil {
			panic("views: embedded static assets missing: " + err.Error())
		}
		fileSystem = http.FS(sub)
	}

	fileServer := http.FileServer(fileSystem)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upath := path.Clean("/" + r.URL.Path)
		if upath == "/" {
			http.NotFound(w, r)
			return
		}

		f, err := fileSystem.Open(upath)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		info, err := f.Stat()
		f.Close()
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Cache-Control", "no-cache, must-revalidate")
		fileServer.ServeHTTP(w, r)
	})
}
