package main

import (
	"compress/gzip"
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/kevinpollet/nego"
)

var cors = handlers.CORS(
	handlers.AllowedMethods([]string{http.MethodGet, http.MethodHead, http.MethodOptions}),
	handlers.AllowedOrigins([]string{"*"}),
)

// acceptsGzip returns if gzip Content-Encoding is asked for in the request
func acceptsGzip(r *http.Request) bool {
	// nego.NegotiateContentEncoding(r, "gzip") returns "gzip"
	// if there is no "Accept-Encoding" header there. Guard against it.
	return r.Header.Get("Accept-Encoding") != "" && nego.NegotiateContentEncoding(r, "gzip") == "gzip"
}

func writeText(w http.ResponseWriter, r *http.Request, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Add("Vary", "Accept-Encoding")
	if !acceptsGzip(r) {
		_, _ = io.WriteString(w, text)
		return
	}
	w.Header().Set("Content-Encoding", "gzip")
	gz := gzip.NewWriter(w)
	_, _ = io.WriteString(gz, text)
	_ = gz.Close()
}
