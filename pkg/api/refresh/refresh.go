// Package refresh provides the HTTP handler that triggers a check run.
// Runs are serialized through a lock channel shared with the scheduler.
package refresh

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/cup/pkg/types"
)

// Path is the refresh endpoint.
const Path = "/api/v3/refresh"

// retryAfterSeconds is advertised to clients rejected while a refresh is running.
const retryAfterSeconds = "30"

// Func runs a refresh for the given references, all images when empty.
type Func func(ctx context.Context, references []string) (types.Report, error)

// Handler triggers refreshes via HTTP.
type Handler struct {
	fn   Func
	lock chan bool
}

// New creates a refresh handler.
//
// Parameters:
//   - fn: Function running the refresh.
//   - lock: Lock channel shared with other refresh triggers; nil creates a private one.
//
// Returns:
//   - *Handler: The handler.
func New(fn Func, lock chan bool) *Handler {
	if lock == nil {
		lock = make(chan bool, 1)
		lock <- true

		logrus.Debug("Initialized new refresh lock channel")
	}

	return &Handler{fn: fn, lock: lock}
}

// Handle runs a refresh and responds with its summary.
//
// Requests naming images with "image" query parameters wait for a running refresh to finish. Full
// refreshes are rejected with 429 while another refresh runs. Once started, a refresh runs to
// completion even if the client disconnects.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	logrus.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Info("Received refresh request")

	if _, err := io.Copy(io.Discard, r.Body); err != nil {
		logrus.WithError(err).Debug("Failed to read request body")
		http.Error(w, "Failed to read request body", http.StatusInternalServerError)

		return
	}

	var images []string

	for _, value := range r.URL.Query()["image"] {
		for image := range strings.SplitSeq(value, ",") {
			if image = strings.TrimSpace(image); image != "" {
				images = append(images, image)
			}
		}
	}

	if len(images) > 0 {
		select {
		case token := <-h.lock:
			defer func() { h.lock <- token }()
		case <-r.Context().Done():
			logrus.Debug("Refresh request cancelled while waiting for lock")
			http.Error(w, "request cancelled", http.StatusServiceUnavailable)

			return
		}

		logrus.WithField("images", images).Info("Executing targeted refresh")
	} else {
		select {
		case token := <-h.lock:
			defer func() { h.lock <- token }()
		default:
			logrus.Debug("Skipped refresh, another refresh already in progress")
			w.Header().Set("Retry-After", retryAfterSeconds)
			writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":     "another refresh is already running",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})

			return
		}

		logrus.Info("Executing full refresh")
	}

	start := time.Now()

	report, err := h.fn(context.WithoutCancel(r.Context()), images)
	if err != nil {
		logrus.WithError(err).Error("Refresh failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":     err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})

		return
	}

	duration := time.Since(start)

	writeJSON(w, http.StatusOK, map[string]any{
		"summary": map[string]any{
			"monitored_images":  report.Metrics.MonitoredImages,
			"updates_available": report.Metrics.UpdatesAvailable,
			"unknown":           report.Metrics.Unknown,
		},
		"timing": map[string]any{
			"duration_ms": duration.Milliseconds(),
			"duration":    duration.String(),
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	var buf bytes.Buffer

	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		logrus.WithError(err).Error("Failed to encode JSON response")
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(buf.Bytes()); err != nil {
		logrus.WithError(err).Error("Failed to write response")
	}
}
