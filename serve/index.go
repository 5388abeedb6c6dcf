package serve

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

const indexPage = "/index.html"

// IndexHandler serves requests for index.html files from fsys with a 200
// status. http.FileServer would redirect them to the enclosing folder.
// Other requests, and index.html folders, go to h.
func IndexHandler(h http.Handler, fsys fs.FS) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, indexPage) {
			h.ServeHTTP(w, r)
			return
		}
		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		f, err := fsys.Open(name)
		if err != nil {
			serveError(w, err)
			return
		}
		defer f.Close()
		fi, err := f.Stat()
		if err != nil {
			serveError(w, err)
			return
		}
		if fi.IsDir() {
			h.ServeHTTP(w, r)
			return
		}
		content, ok := f.(io.ReadSeeker)
		if !ok {
			b, err := io.ReadAll(f)
			if err != nil {
				serveError(w, err)
				return
			}
			content = bytes.NewReader(b)
		}
		http.ServeContent(w, r, fi.Name(), fi.ModTime(), content)
	})
}

// serveError writes the same plain error bodies as http.FileServer.
func serveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		http.Error(w, "404 page not found", http.StatusNotFound)
	case errors.Is(err, fs.ErrPermission):
		http.Error(w, "403 Forbidden", http.StatusForbidden)
	default:
		http.Error(w, "500 Internal Server Error", http.StatusInternalServerError)
	}
}
