package actions

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/cup/pkg/metrics"
	"github.com/nicholas-fedor/cup/pkg/types"
)

// RunRefreshWithNotifications runs a refresh and sends notifications about available updates.
//
// Parameters:
//   - ctx: Context for the refresh.
//   - orchestrator: The orchestrator to run.
//   - notifier: Notification sender, may be nil.
//   - references: Images to check; empty checks all images.
//
// Returns:
//   - types.Report: The report of the refresh.
//   - *metrics.Metric: A metric summarizing the refresh.
//   - error: Non-nil if the worklist could not be built.
func RunRefreshWithNotifications(
	ctx context.Context,
	orchestrator *Orchestrator,
	notifier types.Notifier,
	references []string,
) (types.Report, *metrics.Metric, error) {
	report, err := orchestrator.Refresh(ctx, references)
	if err != nil {
		logrus.WithError(err).Error("Refresh failed")

		return types.Report{}, nil, err
	}

	if notifier != nil && report.Metrics.UpdatesAvailable > 0 {
		logrus.WithField("services", notifier.GetNames()).Debug("Sending update notification")
		notifier.Send(report)
	}

	metric := metrics.NewMetric(report.Metrics)

	logrus.WithFields(logrus.Fields{
		"monitored": metric.Monitored,
		"updates":   report.Metrics.UpdatesAvailable,
		"unknown":   metric.Unknown,
	}).Info("Refresh completed")

	return report, metric, nil
}
