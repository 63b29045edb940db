// Package metrics exposes the check metrics in the Prometheus text format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Path is the metrics endpoint.
const Path = "/metrics"

// Handler is an HTTP handler serving metric data.
type Handler struct {
	Path   string
	Handle http.Handler
}

// New creates a handler for the gatherer; nil serves the default registry.
func New(gatherer prometheus.Gatherer) *Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return &Handler{
		Path:   Path,
		Handle: promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	}
}
