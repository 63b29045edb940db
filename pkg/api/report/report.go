// Package report serves the latest check report over HTTP.
// The full report at /api/v3/json is the document peers federate; /api/v3/simple carries only
// the update flag per image.
package report

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/cup/pkg/session"
	"github.com/nicholas-fedor/cup/pkg/sorter"
	"github.com/nicholas-fedor/cup/pkg/types"
)

// Endpoint paths.
const (
	FullPath   = "/api/v3/json"
	SimplePath = "/api/v3/simple"
)

// Store holds the most recent report.
type Store struct {
	mu     sync.RWMutex
	report types.Report
	ready  bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Set replaces the stored report.
func (s *Store) Set(report types.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.report = report
	s.ready = true
}

// Merge folds the report of a targeted refresh into the stored one.
//
// Entries with the same reference and server are replaced, new ones are appended, and the
// metrics are recomputed. Without a stored report the partial report is stored as is.
func (s *Store) Merge(partial types.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		s.report = partial
		s.ready = true

		return
	}

	type key struct{ reference, server string }

	index := make(map[key]int, len(s.report.Images))
	images := make([]types.CheckResult, len(s.report.Images), len(s.report.Images)+len(partial.Images))
	copy(images, s.report.Images)

	for i, image := range images {
		index[key{image.Reference, image.Server}] = i
	}

	for _, image := range partial.Images {
		if i, ok := index[key{image.Reference, image.Server}]; ok {
			images[i] = image

			continue
		}

		images = append(images, image)
	}

	sorter.SortByStatus(images)

	s.report = session.NewReport(images, partial.LastUpdated)
}

// Get returns the stored report and whether one was set.
func (s *Store) Get() (types.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.report, s.ready
}

// Handler serves the stored report.
type Handler struct {
	store *Store
}

// New creates a handler for the store.
func New(store *Store) *Handler {
	return &Handler{store: store}
}

// Full writes the complete report.
func (h *Handler) Full(w http.ResponseWriter, _ *http.Request) {
	report, ok := h.store.Get()
	if !ok {
		http.Error(w, "No report available yet", http.StatusServiceUnavailable)

		return
	}

	writeJSON(w, report)
}

// Simple writes the metrics and the update flag of every image.
func (h *Handler) Simple(w http.ResponseWriter, _ *http.Request) {
	report, ok := h.store.Get()
	if !ok {
		http.Error(w, "No report available yet", http.StatusServiceUnavailable)

		return
	}

	writeJSON(w, session.Simple(report))
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("Failed to write report response")
	}
}
