package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. Per-request deadlines live in the router's
// timeout middleware; the server itself only bounds header reads and idle
// keep-alive connections.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
