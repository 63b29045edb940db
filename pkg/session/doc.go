// Package session builds the report of a refresh cycle.
// It counts results per status and assembles the report served to clients and peer instances.
//
// Key components:
//   - ComputeMetrics: Counts results per status.
//   - NewReport: Builds the full report.
//   - Simple: Reduces a report to a reference-to-update map.
//
// Usage example:
//
//	report := session.NewReport(results, time.Now())
//	logrus.WithField("updates", report.Metrics.UpdatesAvailable).Info("Refresh complete")
package session
