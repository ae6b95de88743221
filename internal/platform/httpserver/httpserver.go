// Package httpserver constructs the admission API server. Read-side timeouts
// are generous because application intake and document uploads arrive as
// multipart bodies.
package httpserver

import (
	"net/http"
	"time"
)

// New builds the admission API server.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       90 * time.Second,
	}
}
