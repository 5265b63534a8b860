// Package server provides HTTP server initialization and lifecycle management
// for the Unsaid coach API.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"
)

// shutdownTimeout bounds the graceful drain on context cancellation.
const shutdownTimeout = 5 * time.Second

// securityHeadersMiddleware adds security headers to all HTTP responses.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// Start initializes and starts the HTTP server for the given handlers.
// Returns the actual address being listened on (useful for testing with
// port 0). The server drains and closes when ctx is cancelled.
func Start(ctx context.Context, host string, port int, h *Handlers) (string, error) {
	mux := http.NewServeMux()
	h.Register(mux)

	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return "", fmt.Errorf("failed to listen: %w", err)
	}

	srv := &http.Server{
		Handler:           securityHeadersMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("server: serve error: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server: shutdown error: %v", err)
		}
	}()

	log.Printf("server: listening on %s", listener.Addr())
	return listener.Addr().String(), nil
}
