package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/nicholas-fedor/cup/internal/actions"
	"github.com/nicholas-fedor/cup/internal/flags"
	"github.com/nicholas-fedor/cup/internal/meta"
	"github.com/nicholas-fedor/cup/pkg/check"
	"github.com/nicholas-fedor/cup/pkg/container"
	"github.com/nicholas-fedor/cup/pkg/federation"
	"github.com/nicholas-fedor/cup/pkg/metrics"
	"github.com/nicholas-fedor/cup/pkg/notifications"
	"github.com/nicholas-fedor/cup/pkg/registry"
	"github.com/nicholas-fedor/cup/pkg/registry/transport"
	"github.com/nicholas-fedor/cup/pkg/types"
)

// app holds the collaborators of a refresh.
type app struct {
	client       *container.Client
	orchestrator *actions.Orchestrator
	notifier     types.Notifier
}

// newApp connects to the engine and builds the orchestrator and notifier.
//
// Parameters:
//   - flagSet: Parsed flags of the running command.
//   - cfg: Configuration with overrides applied.
//
// Returns:
//   - *app: The collaborators; call close when done.
//   - error: Non-nil if the engine client, the ignore level, the version rules or the notifier are invalid.
func newApp(flagSet *pflag.FlagSet, cfg *types.Config) (*app, error) {
	ignoreFrom, err := check.ParseIgnoreLevel(cfg.IgnoreUpdateType)
	if err != nil {
		return nil, err
	}

	includeStopped, _ := flagSet.GetBool("include-stopped")

	client, err := container.NewClient(container.ClientOptions{
		Host:           cfg.Socket,
		IncludeStopped: includeStopped,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the Docker engine: %w", err)
	}

	httpClient := transport.New(transport.DefaultOptions(meta.UserAgent))
	registryClient := registry.NewClient(httpClient, cfg)

	orchestrator, err := actions.NewOrchestrator(actions.Params{
		Source:   client,
		Registry: registryClient,
		Checker:  check.NewChecker(registryClient, ignoreFrom),
		Peers:    federation.NewFetcher(httpClient),
		Config:   cfg,
	})
	if err != nil {
		return nil, err
	}

	notifier, err := newNotifier(flagSet, cfg)
	if err != nil {
		return nil, err
	}

	return &app{client: client, orchestrator: orchestrator, notifier: notifier}, nil
}

// close flushes queued notifications.
func (a *app) close() {
	if a.notifier != nil {
		a.notifier.Close()
	}
}

// refresh runs a refresh and notifies about available updates.
func (a *app) refresh(ctx context.Context, references []string) (types.Report, *metrics.Metric, error) {
	return actions.RunRefreshWithNotifications(ctx, a.orchestrator, a.notifier, references)
}

// notifierNames returns the configured notification services for the startup message.
func (a *app) notifierNames() []string {
	if a.notifier == nil {
		return nil
	}

	return a.notifier.GetNames()
}

// newNotifier creates the notifier, nil when no notification URL is configured.
func newNotifier(flagSet *pflag.FlagSet, cfg *types.Config) (types.Notifier, error) {
	if len(cfg.Notifications.URLs) == 0 {
		logrus.Debug("No notification URLs configured")

		return nil, nil
	}

	tpl, _ := flagSet.GetString("notification-template")
	tag, _ := flagSet.GetString("notification-title-tag")
	skipTitle, _ := flagSet.GetBool("notification-skip-title")
	stdout, _ := flagSet.GetBool("notification-log-stdout")

	hostname, _ := flagSet.GetString("notifications-hostname")
	if hostname == "" {
		hostname, _ = os.Hostname()
	}

	notifier, err := notifications.NewNotifier(notifications.Options{
		URLs:      cfg.Notifications.URLs,
		Template:  tpl,
		Hostname:  hostname,
		Title:     cfg.Notifications.Title,
		TitleTag:  tag,
		SkipTitle: skipTitle,
		Delay:     flags.GetNotificationDelay(flagSet),
		Stdout:    stdout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up notifications: %w", err)
	}

	return notifier, nil
}

// serverNames returns the sorted names of the configured peer servers.
func serverNames(cfg *types.Config) []string {
	names := make([]string, 0, len(cfg.Servers))
	for name := range cfg.Servers {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}
