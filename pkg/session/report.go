package session

import (
	"time"

	"github.com/nicholas-fedor/cup/pkg/types"
)

// ComputeMetrics counts results per status.
//
// Parameters:
//   - results: Results of a refresh, peer entries included.
//
// Returns:
//   - types.Metrics: The counters; unknown images never count as updates.
func ComputeMetrics(results []types.CheckResult) types.Metrics {
	metrics := types.Metrics{MonitoredImages: len(results)}

	for _, result := range results {
		switch result.Status {
		case types.StatusMajor:
			metrics.MajorUpdates++
		case types.StatusMinor:
			metrics.MinorUpdates++
		case types.StatusPatch:
			metrics.PatchUpdates++
		case types.StatusAvailable:
			metrics.OtherUpdates++
		case types.StatusUpToDate:
			metrics.UpToDate++
		default:
			metrics.Unknown++
		}
	}

	metrics.UpdatesAvailable = metrics.MajorUpdates + metrics.MinorUpdates +
		metrics.PatchUpdates + metrics.OtherUpdates

	return metrics
}

// NewReport builds the report of a refresh.
//
// Parameters:
//   - results: Sorted results of the refresh.
//   - lastUpdated: Completion time of the refresh.
//
// Returns:
//   - types.Report: The report.
func NewReport(results []types.CheckResult, lastUpdated time.Time) types.Report {
	images := results
	if images == nil {
		images = []types.CheckResult{}
	}

	return types.Report{
		Metrics:     ComputeMetrics(results),
		Images:      images,
		LastUpdated: lastUpdated.UTC(),
	}
}

// SimpleReport maps each reference to its tri-state update flag.
type SimpleReport struct {
	Metrics types.Metrics    `json:"metrics"`
	Images  map[string]*bool `json:"images"`
}

// Simple reduces a report to its metrics and per-reference update flags.
func Simple(report types.Report) SimpleReport {
	images := make(map[string]*bool, len(report.Images))
	for _, image := range report.Images {
		images[image.Reference] = image.Status.HasUpdate()
	}

	return SimpleReport{Metrics: report.Metrics, Images: images}
}
