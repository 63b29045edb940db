// Package actions provides the core refresh logic of Cup.
// It gathers the image worklist, authenticates once per registry, checks every image concurrently
// and merges the results with those of peer instances.
//
// Key components:
//   - Orchestrator: Runs a refresh and returns its report.
//   - RunRefreshWithNotifications: Runs a refresh, sends notifications and returns a metric.
//
// Usage example:
//
//	orchestrator := actions.NewOrchestrator(actions.Params{
//	    Source:   source,
//	    Registry: registryClient,
//	    Checker:  check.NewChecker(registryClient, ignore),
//	    Peers:    federation.NewFetcher(transportClient),
//	    Config:   config,
//	})
//	report, metric := actions.RunRefreshWithNotifications(ctx, orchestrator, notifier, nil)
//
// The package uses errgroup for fan-out and logrus for logging.
package actions
