package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nicholas-fedor/cup/internal/api"
	"github.com/nicholas-fedor/cup/internal/flags"
	"github.com/nicholas-fedor/cup/internal/logging"
	"github.com/nicholas-fedor/cup/internal/meta"
	"github.com/nicholas-fedor/cup/internal/scheduling"
	pkgApi "github.com/nicholas-fedor/cup/pkg/api"
	"github.com/nicholas-fedor/cup/pkg/api/report"
	"github.com/nicholas-fedor/cup/pkg/filters"
	"github.com/nicholas-fedor/cup/pkg/metrics"
	"github.com/nicholas-fedor/cup/pkg/types"
)

// NewServeCommand creates the serve subcommand.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the results over HTTP and refresh them periodically",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	flags.RegisterServeFlags(cmd)

	return cmd
}

// runServe serves the API and runs scheduled refreshes until SIGINT or SIGTERM.
func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flagSet := cmd.Flags()

	schedule, err := scheduling.ParseSchedule(config.RefreshInterval)
	if err != nil {
		return err
	}

	a, err := newApp(flagSet, config)
	if err != nil {
		return err
	}
	defer a.close()

	sink := metrics.Default()
	defer sink.Shutdown()

	store := report.NewStore()
	lock := scheduling.NewLock()
	refresher := storingRefresher(a.refresh, store)

	host, _ := flagSet.GetString("host")
	port, _ := flagSet.GetInt("port")
	token, _ := flagSet.GetString("api-token")
	noInitialRefresh, _ := flagSet.GetBool("no-initial-refresh")

	_, filterDesc := filters.BuildFilter(config)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return api.SetupAndStartAPI(groupCtx, api.Options{
			Host:  host,
			Port:  port,
			Token: token,
			Store: store,
			Refresh: func(ctx context.Context, references []string) (types.Report, error) {
				result, metric, err := refresher(ctx, references)
				if metric != nil {
					sink.Register(metric)
				}

				return result, err
			},
			Lock:     lock,
			Gatherer: prometheus.DefaultGatherer,
		})
	})

	group.Go(func() error {
		return scheduling.RunRefreshesOnSchedule(groupCtx, scheduling.Options{
			Lock:           lock,
			Schedule:       schedule,
			RefreshOnStart: !noInitialRefresh,
			Refresh: func(ctx context.Context) *metrics.Metric {
				_, metric, _ := refresher(ctx, nil)

				return metric
			},
			WriteStartupMessage: func(next time.Time) {
				logging.WriteStartupMessage(cmd, logging.StartupInfo{
					Version:    meta.Version,
					APIVersion: a.client.APIVersion(),
					Notifiers:  a.notifierNames(),
					Filter:     filterDesc,
					Agent:      config.Agent,
					Servers:    serverNames(config),
					NextRun:    next,
					ListenAddr: pkgApi.GetAddr(host, port),
				})
			},
			Metrics: sink,
		})
	})

	err = group.Wait()

	logrus.Info("Shutting down")

	return err
}

// refreshFunc runs a refresh for the given references, all images when empty.
type refreshFunc func(ctx context.Context, references []string) (types.Report, *metrics.Metric, error)

// storingRefresher stores the report of every successful refresh.
//
// A full refresh replaces the stored report; a refresh of named images is merged into it. A refresh
// interrupted by shutdown is not stored, since its checks fail with the cancelled context.
func storingRefresher(refresh refreshFunc, store *report.Store) refreshFunc {
	return func(ctx context.Context, references []string) (types.Report, *metrics.Metric, error) {
		result, metric, err := refresh(ctx, references)
		if err != nil {
			return result, metric, err
		}

		if ctx.Err() != nil {
			logrus.WithError(ctx.Err()).Debug("Discarding report of an interrupted refresh")

			return result, metric, nil
		}

		if len(references) == 0 {
			store.Set(result)
		} else {
			store.Merge(result)
		}

		return result, metric, nil
	}
}
