package web

import (
	"io/fs"
	"net/http"
)

// ErrorHandler replaces the body of 404 and 500 responses with /404.html or
// /500.html from fsys when those files exist.
func ErrorHandler(h http.Handler, fsys fs.FS) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(&pageWriter{ResponseWriter: w, fsys: fsys}, r)
	})
}

// errorPages maps status codes to the file holding their body.
var errorPages = map[int]string{
	http.StatusNotFound:            "404.html",
	http.StatusInternalServerError: "500.html",
}

type pageWriter struct {
	http.ResponseWriter
	fsys     fs.FS
	replaced bool
	err      error
}

func (w *pageWriter) Write(b []byte) (int, error) {
	if w.replaced {
		return len(b), w.err
	}
	return w.ResponseWriter.Write(b)
}

func (w *pageWriter) WriteHeader(statusCode int) {
	name, ok := errorPages[statusCode]
	if ok {
		b, err := fs.ReadFile(w.fsys, name)
		if err == nil {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Header().Del("Content-Length")
			w.Header().Del("X-Content-Type-Options")
			w.ResponseWriter.WriteHeader(statusCode)
			w.replaced = true
			_, w.err = w.ResponseWriter.Write(b)
			return
		}
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *pageWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
