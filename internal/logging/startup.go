// Package logging writes the startup summary of the serve command.
// It reports the version, notification setup, federation mode and refresh schedule once at startup.
package logging

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// StartupInfo collects what the startup message reports.
type StartupInfo struct {
	Version    string
	APIVersion string   // Docker engine API version, empty if unknown.
	Notifiers  []string // Names of the notification services.
	Filter     string   // Description of the image filter.
	Agent      bool
	Servers    []string // Names of the peer servers.
	NextRun    time.Time
	ListenAddr string // Address of the HTTP server, empty if none.
}

// WriteStartupMessage logs the startup information unless --no-startup-message is set.
//
// Parameters:
//   - c: The command, providing the no-startup-message flag.
//   - info: What to report.
func WriteStartupMessage(c *cobra.Command, info StartupInfo) {
	if noStartupMessage, _ := c.Flags().GetBool("no-startup-message"); noStartupMessage {
		return
	}

	log := logrus.NewEntry(logrus.StandardLogger())

	if info.APIVersion != "" {
		log.Info("Cup ", info.Version, " using Docker API v", info.APIVersion)
	} else {
		log.Info("Cup ", info.Version)
	}

	LogNotifierInfo(log, info.Notifiers)
	log.Debug(info.Filter)
	LogFederationInfo(log, info.Agent, info.Servers)
	LogScheduleInfo(log, info.NextRun)

	if info.ListenAddr != "" {
		log.Info("The HTTP API is listening on " + info.ListenAddr)
	}

	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		log.Warn("Trace level enabled: log will include sensitive information as credentials and tokens")
	}
}

// LogNotifierInfo logs the configured notification services.
func LogNotifierInfo(log *logrus.Entry, notifierNames []string) {
	if len(notifierNames) > 0 {
		log.Info("Using notifications: " + strings.Join(notifierNames, ", "))
	} else {
		log.Info("Using no notifications")
	}
}

// LogFederationInfo logs whether peer servers are queried.
func LogFederationInfo(log *logrus.Entry, agent bool, servers []string) {
	switch {
	case agent:
		log.Info("Running in agent mode, only local images are reported")
	case len(servers) > 0:
		log.Info("Including results from servers: " + strings.Join(servers, ", "))
	}
}

// LogScheduleInfo logs the time of the next scheduled refresh.
//
// Parameters:
//   - log: The entry to write to.
//   - sched: The next scheduled refresh, zero if refreshes only run on request.
func LogScheduleInfo(log *logrus.Entry, sched time.Time) {
	if sched.IsZero() {
		log.Info("Periodic refreshes are not enabled, refreshes run on request only.")

		return
	}

	until := FormatDuration(time.Until(sched))
	log.Info("Scheduling next refresh: " + sched.Format("2006-01-02 15:04:05 -0700 MST"))
	log.Info("Note that the next refresh will be performed in " + until)
}
