// Package metrics exposes refresh results as Prometheus metrics.
//
// Key components:
//   - Metrics: Handles metric queuing and gauge updates.
//   - NewMetric: Creates metrics from report counters.
//
// Usage example:
//
//	m := metrics.Default()
//	m.Register(metrics.NewMetric(report.Metrics))
//
// Skipped refreshes are recorded by registering a nil metric.
package metrics
