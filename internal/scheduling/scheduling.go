// Package scheduling runs periodic refreshes in serve mode.
// It parses refresh intervals as cron expressions, serializes refreshes with a lock channel shared with
// the HTTP API, and waits for a running refresh before shutting down.
package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron"
	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/cup/pkg/metrics"
)

// Field counts of the accepted cron formats.
const (
	standardFields    = 5
	withSecondsFields = 6
)

// errInvalidSchedule indicates a refresh interval that is not a valid cron expression.
var errInvalidSchedule = errors.New("invalid refresh interval")

// RefreshFunc runs one refresh and returns its metric, nil if the refresh failed.
// Failed refreshes are not recorded in the metrics.
type RefreshFunc func(ctx context.Context) *metrics.Metric

// Options configures RunRefreshesOnSchedule.
type Options struct {
	// Lock serializes refreshes; nil creates a private lock.
	Lock chan bool
	// Schedule triggers periodic refreshes; nil disables them.
	Schedule cron.Schedule
	// RefreshOnStart runs a refresh before the scheduler starts.
	RefreshOnStart bool
	// Refresh performs a refresh.
	Refresh RefreshFunc
	// WriteStartupMessage is called once with the time of the first scheduled refresh, zero if none.
	WriteStartupMessage func(next time.Time)
	// Metrics receives refresh metrics; nil uses metrics.Default().
	Metrics *metrics.Metrics
}

// NewLock creates an available refresh lock.
func NewLock() chan bool {
	lock := make(chan bool, 1)
	lock <- true

	return lock
}

// ParseSchedule parses a refresh interval.
//
// Five fields are read as a standard cron expression, six fields as one with a leading seconds
// field. Descriptors such as "@hourly" or "@every 30m" are accepted as well.
//
// Parameters:
//   - spec: The interval; empty disables periodic refreshes.
//
// Returns:
//   - cron.Schedule: The schedule, nil for an empty spec.
//   - error: Non-nil if the expression cannot be parsed.
func ParseSchedule(spec string) (cron.Schedule, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}

	var (
		schedule cron.Schedule
		err      error
	)

	switch fields := len(strings.Fields(spec)); {
	case strings.HasPrefix(spec, "@"):
		schedule, err = cron.Parse(spec)
	case fields == standardFields:
		schedule, err = cron.ParseStandard(spec)
	case fields == withSecondsFields:
		schedule, err = cron.Parse(spec)
	default:
		return nil, fmt.Errorf("%w: %q has %d fields, expected 5 or 6", errInvalidSchedule, spec, fields)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", errInvalidSchedule, spec, err)
	}

	return schedule, nil
}

// WaitForRunningRefresh waits for any currently running refresh to complete before proceeding with shutdown.
//
// Parameters:
//   - ctx: Context allowing an early return.
//   - lock: The refresh lock.
func WaitForRunningRefresh(ctx context.Context, lock chan bool) {
	const refreshWaitTimeout = 60 * time.Second

	logrus.Debug("Checking lock status before shutdown.")

	if len(lock) == 0 {
		select {
		case <-lock:
			logrus.Debug("Lock acquired, refresh finished.")
		case <-time.After(refreshWaitTimeout):
			logrus.Warn("Timeout waiting for running refresh to finish, proceeding with shutdown.")
		case <-ctx.Done():
			logrus.Warn("Context cancelled while waiting for running refresh.")
		}
	} else {
		logrus.Debug("No refresh running, lock available.")
	}
}

// RunRefreshesOnSchedule runs refreshes on the configured schedule until the context is cancelled.
//
// A scheduled refresh that finds the lock taken is skipped and recorded as such in the metrics.
//
// Parameters:
//   - ctx: Context controlling the scheduler's lifecycle.
//   - opts: Scheduler options.
//
// Returns:
//   - error: Always nil; kept for symmetry with the HTTP server runner.
func RunRefreshesOnSchedule(ctx context.Context, opts Options) error {
	lock := opts.Lock
	if lock == nil {
		lock = NewLock()
	}

	sink := opts.Metrics
	if sink == nil {
		sink = metrics.Default()
	}

	scheduler := cron.New()

	logNextRun := func() {
		if entries := scheduler.Entries(); len(entries) > 0 {
			logrus.Debug("Scheduled next refresh: " + entries[0].Next.String())
		}
	}

	refresh := func() {
		select {
		case v := <-lock:
			defer func() { lock <- v }()

			if metric := opts.Refresh(ctx); metric != nil {
				sink.Register(metric)
			}

			logrus.Debug("Scheduled refresh completed")
		default:
			sink.Register(nil)
			logrus.Debug("Skipped refresh, another refresh is already running.")
		}

		logNextRun()
	}

	var nextRun time.Time
	if opts.Schedule != nil {
		scheduler.Schedule(opts.Schedule, cron.FuncJob(refresh))
		nextRun = opts.Schedule.Next(time.Now())
	}

	if opts.WriteStartupMessage != nil {
		opts.WriteStartupMessage(nextRun)
	}

	if opts.RefreshOnStart {
		refresh()
	}

	scheduler.Start()

	<-ctx.Done()
	logrus.Debug("Context canceled, stopping scheduler...")

	scheduler.Stop()
	logrus.Debug("Waiting for running refresh to be finished...")

	WaitForRunningRefresh(ctx, lock)

	logrus.Debug("Scheduler stopped.")

	return nil
}
