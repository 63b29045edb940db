// Package api wires the report, refresh and metrics endpoints of "cup serve" into the HTTP server.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/cup/pkg/api"
	metricsAPI "github.com/nicholas-fedor/cup/pkg/api/metrics"
	"github.com/nicholas-fedor/cup/pkg/api/refresh"
	"github.com/nicholas-fedor/cup/pkg/api/report"
)

// Options configures the HTTP API.
type Options struct {
	Host  string
	Port  int
	Token string // Protects the refresh endpoint; empty leaves it open.
	// Store holds the report served by the report endpoints.
	Store *report.Store
	// Refresh runs a refresh, nil disables the refresh endpoint.
	Refresh refresh.Func
	// Lock is shared with the scheduler so refreshes never overlap.
	Lock chan bool
	// Gatherer backs the metrics endpoint, nil disables it.
	Gatherer prometheus.Gatherer
}

// Setup creates the API and registers its endpoints.
//
// Parameters:
//   - opts: API options.
//   - server: Optional server replacing the real one in tests.
//
// Returns:
//   - *api.API: The API with all enabled endpoints registered.
func Setup(opts Options, server ...api.HTTPServer) *api.API {
	httpAPI := api.New(opts.Token, api.GetAddr(opts.Host, opts.Port), server...)

	if opts.Store != nil {
		reportHandler := report.New(opts.Store)
		httpAPI.RegisterFunc("GET "+report.FullPath, reportHandler.Full)
		httpAPI.RegisterFunc("GET "+report.SimplePath, reportHandler.Simple)
	}

	if opts.Refresh != nil {
		refreshHandler := refresh.New(opts.Refresh, opts.Lock)
		httpAPI.RegisterFunc(refresh.Path, httpAPI.RequireToken(refreshHandler.Handle))
	}

	if opts.Gatherer != nil {
		metricsHandler := metricsAPI.New(opts.Gatherer)
		httpAPI.RegisterHandler(metricsHandler.Path, metricsHandler.Handle)
	}

	return httpAPI
}

// SetupAndStartAPI registers the endpoints and serves them until ctx is cancelled.
//
// Returns:
//   - error: An error if the server fails, nil on clean shutdown.
func SetupAndStartAPI(ctx context.Context, opts Options, server ...api.HTTPServer) error {
	httpAPI := Setup(opts, server...)

	if err := httpAPI.Start(ctx, true); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.WithError(err).Error("Failed to start API")

		return fmt.Errorf("failed to start HTTP API: %w", err)
	}

	return nil
}
