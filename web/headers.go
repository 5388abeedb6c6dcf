// Package web holds the HTTP middleware used to serve a rendered site.
package web

import (
	"mime"
	"net/http"
	"path"
	"strings"
	"time"
)

// HeaderHandler returns an http.Handler that sets the given headers on every
// response. Names are canonicalized once; empty values are ignored.
func HeaderHandler(h http.Handler, headers map[string]string) http.Handler {
	fixed := make(http.Header, len(headers))
	for k, v := range headers {
		if v != "" {
			fixed.Set(k, v)
		}
	}
	if len(fixed) == 0 {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dst := w.Header()
		for k, v := range fixed {
			dst[k] = v
		}
		h.ServeHTTP(w, r)
	})
}

// ExpiresHandler sets the Expires header of successful responses. HTML pages
// get expires and everything else gets staticExpires; a zero duration adds
// nothing. Pages are recognized by their Content-Type, or by the request path
// when the response has none, as with 304 Not Modified.
func ExpiresHandler(h http.Handler, expires, staticExpires time.Duration) http.Handler {
	if expires == 0 && staticExpires == 0 {
		return h
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(&expiresWriter{
			ResponseWriter: w,
			path:           r.URL.Path,
			expires:        expires,
			staticExpires:  staticExpires,
		}, r)
	})
}

// expiresWriter adds the Expires header just before the status is written.
type expiresWriter struct {
	http.ResponseWriter
	path          string
	expires       time.Duration
	staticExpires time.Duration
	wroteHeader   bool
}

func (w *expiresWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		if statusCode < http.StatusBadRequest {
			w.setExpires()
		}
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *expiresWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", http.DetectContentType(b))
		}
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *expiresWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *expiresWriter) setExpires() {
	expiry := w.staticExpires
	if isPage(w.Header().Get("Content-Type"), w.path) {
		expiry = w.expires
	}
	if expiry != 0 {
		w.Header().Set("Expires", time.Now().Add(expiry).UTC().Format(http.TimeFormat))
	}
}

// isPage reports whether a response is an HTML page.
func isPage(contentType, urlPath string) bool {
	if contentType == "" {
		if strings.HasSuffix(urlPath, "/") {
			return true
		}
		contentType = mime.TypeByExtension(path.Ext(urlPath))
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "text/html"
}
