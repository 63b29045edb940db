package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Server timeouts.
const (
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 2 * time.Minute
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// HTTPServer is the subset of http.Server used by RunHTTPServer.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// API represents the HTTP server.
type API struct {
	Token      string
	Addr       string
	registered bool
	mux        *http.ServeMux
	server     HTTPServer
}

// New creates an API instance.
//
// Parameters:
//   - token: Bearer token required by protected handlers; empty disables the check.
//   - addr: Listen address, e.g. ":8000".
//   - server: Optional server replacing the real one in tests.
//
// Returns:
//   - *API: The API instance.
func New(token, addr string, server ...HTTPServer) *API {
	var injected HTTPServer
	if len(server) > 0 {
		injected = server[0]
	}

	logrus.WithFields(logrus.Fields{
		"addr":       addr,
		"token_auth": token != "",
	}).Debug("Initialized new API instance")

	return &API{
		Token:  token,
		Addr:   addr,
		mux:    http.NewServeMux(),
		server: injected,
	}
}

// GetAddr formats the listen address from host and port, bracketing IPv6 hosts.
func GetAddr(host string, port int) string {
	if host != "" && strings.Contains(host, ":") && net.ParseIP(host) != nil {
		return fmt.Sprintf("[%s]:%d", host, port)
	}

	return fmt.Sprintf("%s:%d", host, port)
}

// RegisterFunc registers an HTTP handler function for the given pattern.
func (a *API) RegisterFunc(pattern string, handler http.HandlerFunc) {
	a.mux.HandleFunc(pattern, handler)
	a.registered = true
}

// RegisterHandler registers an HTTP handler for the given pattern.
func (a *API) RegisterHandler(pattern string, handler http.Handler) {
	a.mux.Handle(pattern, handler)
	a.registered = true
}

// Handler returns the router with request logging applied.
func (a *API) Handler() http.Handler {
	return logRequests(a.mux)
}

// Start starts the HTTP server.
//
// When block is true it serves until ctx is cancelled; otherwise the server runs in the background
// and is shut down once ctx is done.
//
// Parameters:
//   - ctx: Lifetime of the server.
//   - block: Whether to wait for the server to stop.
//
// Returns:
//   - error: Non-nil if the server failed, nil on clean shutdown.
func (a *API) Start(ctx context.Context, block bool) error {
	if !a.registered {
		logrus.Info("No handlers registered, skipping API start")

		return nil
	}

	server := a.server
	if server == nil {
		server = &http.Server{
			Addr:              a.Addr,
			Handler:           a.Handler(),
			ReadHeaderTimeout: readHeaderTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
			BaseContext:       func(_ net.Listener) context.Context { return ctx },
		}
	}

	logrus.WithField("addr", a.Addr).Info("Starting HTTP API server")

	if block {
		return RunHTTPServer(ctx, server)
	}

	go func() {
		if err := RunHTTPServer(ctx, server); err != nil {
			logrus.WithError(err).Error("HTTP server failed")
		}
	}()

	return nil
}

// RequireToken wraps a handler function with bearer-token authentication.
//
// Requests pass unchecked when the API has no token.
func (a *API) RequireToken(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a.Token != "" {
			auth, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(auth), []byte(a.Token)) != 1 {
				logrus.WithField("path", r.URL.Path).Debug("Rejected request with invalid token")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)

				return
			}
		}

		handler(w, r)
	}
}

// logRequests logs every request at debug level.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		logrus.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"remote":   r.RemoteAddr,
			"duration": time.Since(start).Round(time.Microsecond),
		}).Debug("Handled HTTP request")
	})
}

// RunHTTPServer starts the server and shuts it down gracefully when ctx is cancelled.
//
// Returns:
//   - error: Non-nil if the server failed to start or shut down.
func RunHTTPServer(ctx context.Context, server HTTPServer) error {
	errChan := make(chan error, 1)

	go func() {
		errChan <- server.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		return nil
	}
}
