package metrics

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nicholas-fedor/cup/pkg/types"
)

var metrics *Metrics

// Metric holds the counters of one refresh.
type Metric struct {
	Monitored int // Number of images checked, peer entries included.
	UpToDate  int // Number of images without updates.
	Major     int // Number of major version updates.
	Minor     int // Number of minor version updates.
	Patch     int // Number of patch version updates.
	Other     int // Number of digest updates.
	Unknown   int // Number of images that could not be checked.
}

// Metrics handles processing and exposing refresh metrics.
type Metrics struct {
	channel      chan *Metric       // Channel for queuing metrics.
	monitored    prometheus.Gauge   // Gauge for monitored images.
	updates      *prometheus.GaugeVec
	upToDate     prometheus.Gauge   // Gauge for up-to-date images.
	unknown      prometheus.Gauge   // Gauge for unknown images.
	total        prometheus.Counter // Counter for total refreshes.
	skipped      prometheus.Counter // Counter for skipped refreshes.
	dropped      prometheus.Counter // Counter for dropped metrics.
	stopCh       chan struct{}      // Channel for shutdown signaling.
	shutdownOnce sync.Once          // Ensures shutdown is called only once.
	//nolint:containedctx
	ctx    context.Context    // Context for cancellation.
	cancel context.CancelFunc // Cancel function for the context.
}

// NewWithRegistry creates a new Metrics handler with a custom Prometheus registry.
//
// Parameters:
//   - registry: Prometheus registerer to use for metric registration.
//
// Returns:
//   - (*Metrics, error): Metrics handler with its processing goroutine, or an error if registration fails.
func NewWithRegistry(registry prometheus.Registerer) (*Metrics, error) {
	// channelBufferSize sets the metrics channel capacity.
	const channelBufferSize = 10

	ctx, cancel := context.WithCancel(context.Background())

	metrics := &Metrics{
		monitored: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cup_images_monitored",
			Help: "Number of images checked during the last refresh",
		}),
		updates: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cup_images_updates_available",
			Help: "Number of images with an update during the last refresh, by update type",
		}, []string{"type"}),
		upToDate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cup_images_up_to_date",
			Help: "Number of up-to-date images during the last refresh",
		}),
		unknown: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cup_images_unknown",
			Help: "Number of images that could not be checked during the last refresh",
		}),
		total: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cup_refreshes_total",
			Help: "Number of refreshes since cup started",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cup_refreshes_skipped_total",
			Help: "Number of refreshes skipped because another refresh was running",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cup_metrics_dropped_total",
			Help: "Number of metrics dropped due to full channel",
		}),
		channel: make(chan *Metric, channelBufferSize),
		stopCh:  make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}

	metricsList := []prometheus.Collector{
		metrics.monitored,
		metrics.updates,
		metrics.upToDate,
		metrics.unknown,
		metrics.total,
		metrics.skipped,
		metrics.dropped,
	}
	for _, m := range metricsList {
		if err := registry.Register(m); err != nil {
			cancel()

			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}

	go metrics.HandleUpdate()

	return metrics, nil
}

// NewMetric creates a Metric from report counters.
//
// Parameters:
//   - counts: Counters of a refresh report.
//
// Returns:
//   - *Metric: New metric instance.
func NewMetric(counts types.Metrics) *Metric {
	return &Metric{
		Monitored: counts.MonitoredImages,
		UpToDate:  counts.UpToDate,
		Major:     counts.MajorUpdates,
		Minor:     counts.MinorUpdates,
		Patch:     counts.PatchUpdates,
		Other:     counts.OtherUpdates,
		Unknown:   counts.Unknown,
	}
}

// QueueIsEmpty checks if the metrics channel is empty.
func (m *Metrics) QueueIsEmpty() bool {
	return len(m.channel) == 0
}

// Register attempts to enqueue a metric for processing.
// A nil metric records a skipped refresh. If the channel is full, the metric is dropped.
//
// Parameters:
//   - metric: Metric to register.
func (m *Metrics) Register(metric *Metric) {
	select {
	case m.channel <- metric:
	default:
		m.dropped.Inc()
	}
}

// Default initializes or returns the singleton Metrics handler.
// It panics on registration failure against the default registry.
//
// Returns:
//   - *Metrics: Metrics handler registered with the default Prometheus registry.
func Default() *Metrics {
	if metrics != nil {
		return metrics
	}

	var err error

	metrics, err = NewWithRegistry(prometheus.DefaultRegisterer)
	if err != nil {
		alreadyRegistered := &prometheus.AlreadyRegisteredError{}
		if errors.As(err, &alreadyRegistered) {
			panic(fmt.Errorf("metrics registered twice: %w", err))
		}

		panic(err)
	}

	return metrics
}

// Shutdown stops the metrics processing goroutine. It is safe to call more than once.
func (m *Metrics) Shutdown() {
	m.shutdownOnce.Do(func() {
		close(m.stopCh)
		m.cancel()
	})
}

// HandleUpdate processes metrics from the channel.
func (m *Metrics) HandleUpdate() {
	for {
		select {
		case change, ok := <-m.channel:
			if !ok {
				return
			}

			if change == nil {
				m.total.Inc()
				m.skipped.Inc()

				continue
			}

			m.monitored.Set(float64(change.Monitored))
			m.upToDate.Set(float64(change.UpToDate))
			m.unknown.Set(float64(change.Unknown))
			m.updates.WithLabelValues("major").Set(float64(change.Major))
			m.updates.WithLabelValues("minor").Set(float64(change.Minor))
			m.updates.WithLabelValues("patch").Set(float64(change.Patch))
			m.updates.WithLabelValues("other").Set(float64(change.Other))
			m.total.Inc()
		case <-m.stopCh:
			return
		case <-m.ctx.Done():
			return
		}
	}
}
