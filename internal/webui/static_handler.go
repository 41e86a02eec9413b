package webui

import (
	"io/fs"
	"net/http"
	"path"
)

// staticHandler serves the embedded stylesheet and other assets. Only plain
// file names are accepted.
func (webUI *WebUI) staticHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("file")
	if name == "" || name != path.Base(name) || name == "." || name == ".." {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	if _, err := fs.Stat(staticFS, path.Join("static", name)); err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFileFS(w, r, sub, name)
}
