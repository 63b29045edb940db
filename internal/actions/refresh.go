package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/nicholas-fedor/cup/pkg/check"
	"github.com/nicholas-fedor/cup/pkg/filters"
	"github.com/nicholas-fedor/cup/pkg/registry/helpers"
	"github.com/nicholas-fedor/cup/pkg/session"
	"github.com/nicholas-fedor/cup/pkg/sorter"
	"github.com/nicholas-fedor/cup/pkg/types"
)

// Authenticator resolves the shared token of a registry.
type Authenticator interface {
	Authenticate(ctx context.Context, registry string, repositories []string) (string, error)
}

// Checker checks a prepared image.
type Checker interface {
	Check(ctx context.Context, img *check.Image, token string) types.CheckResult
}

// PeerFetcher retrieves results from peer instances.
type PeerFetcher interface {
	FetchAll(ctx context.Context, servers map[string]string) []types.CheckResult
}

// Params configures an Orchestrator.
type Params struct {
	Source   types.ImageSource
	Registry Authenticator
	Checker  Checker
	Peers    PeerFetcher
	Config   *types.Config
}

// Orchestrator runs refreshes.
type Orchestrator struct {
	source   types.ImageSource
	registry Authenticator
	checker  Checker
	peers    PeerFetcher
	config   *types.Config
	filter   types.Filter
	rules    *filters.VersionRules
}

// registryBatch groups the images of one registry with its authentication outcome.
type registryBatch struct {
	registry string
	images   []int // Indices into the worklist.
	token    string
	err      error
}

// NewOrchestrator creates an orchestrator.
//
// Parameters:
//   - params: Collaborators and configuration.
//
// Returns:
//   - *Orchestrator: The orchestrator.
//   - error: Non-nil if the configured version rules are invalid.
func NewOrchestrator(params Params) (*Orchestrator, error) {
	config := params.Config
	if config == nil {
		config = &types.Config{}
	}

	rules, err := filters.NewVersionRules(config.Images.Versions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidRules, err)
	}

	filter, description := filters.BuildFilter(config)
	logrus.Debug(description)

	return &Orchestrator{
		source:   params.Source,
		registry: params.Registry,
		checker:  params.Checker,
		peers:    params.Peers,
		config:   config,
		filter:   filter,
		rules:    rules,
	}, nil
}

// Refresh checks every image and returns the sorted report.
//
// Registry failures mark only that registry's images as unknown, and failing peers contribute
// nothing; the refresh itself fails only when the image source cannot be read.
//
// Parameters:
//   - ctx: Context for all requests.
//   - references: Images to check exclusively; empty checks all local images plus the configured extras.
//
// Returns:
//   - types.Report: The report.
//   - error: Non-nil if the worklist could not be built.
func (o *Orchestrator) Refresh(ctx context.Context, references []string) (types.Report, error) {
	start := time.Now()

	requested := references
	if len(requested) == 0 {
		requested = o.config.Images.Extra
	}

	locals, err := o.source.Images(ctx, requested)
	if err != nil {
		return types.Report{}, fmt.Errorf("%w: %w", errListImagesFailed, err)
	}

	if len(references) > 0 {
		locals = onlyRequested(locals, references)
	}

	images, results := o.prepare(locals)
	batches := batchByRegistry(images)

	logrus.WithFields(logrus.Fields{
		"images":     len(images),
		"registries": len(batches),
	}).Debug("Prepared images")

	o.authenticate(ctx, images, batches)

	checked := make([]types.CheckResult, len(images))

	var (
		group errgroup.Group
		peers []types.CheckResult
	)

	if !o.config.Agent && o.peers != nil && len(o.config.Servers) > 0 {
		group.Go(func() error {
			peers = o.peers.FetchAll(ctx, o.config.Servers)

			return nil
		})
	}

	for _, batch := range batches {
		for _, index := range batch.images {
			img := images[index]

			if batch.err != nil {
				group.Go(func() error {
					result := types.Unknown(img.Reference, img.Parts, batch.err.Error())
					result.UsedBy = img.UsedBy
					result.Mode = img.Mode()
					result.Finalize()
					checked[index] = result

					return nil
				})

				continue
			}

			group.Go(func() error {
				checked[index] = o.checker.Check(ctx, img, batch.token)

				return nil
			})
		}
	}

	_ = group.Wait()

	results = append(results, checked...)
	results = append(results, peers...)
	sorter.SortByStatus(results)

	report := session.NewReport(results, time.Now())

	logrus.WithFields(logrus.Fields{
		"images":   report.Metrics.MonitoredImages,
		"updates":  report.Metrics.UpdatesAvailable,
		"unknown":  report.Metrics.Unknown,
		"duration": time.Since(start).Round(time.Millisecond),
	}).Debug("Refresh complete")

	return report, nil
}

// prepare filters the worklist and ingests each image.
//
// Images that cannot be ingested are returned as finalized unknown results.
func (o *Orchestrator) prepare(locals []types.LocalImage) ([]*check.Image, []types.CheckResult) {
	var (
		images  []*check.Image
		results []types.CheckResult
		seen    = make(map[string]struct{}, len(locals))
	)

	for _, local := range locals {
		if _, ok := seen[local.Reference]; ok {
			continue
		}

		seen[local.Reference] = struct{}{}

		parts, err := helpers.Split(local.Reference)
		if err == nil && !o.filter(local.Reference, parts) {
			continue
		}

		img, err := check.NewImage(local, o.rules)
		if err != nil {
			logrus.WithError(err).WithField("image", local.Reference).Warn("Cannot check image")

			result := types.Unknown(local.Reference, parts, err.Error())
			result.UsedBy = local.UsedBy
			result.Finalize()
			results = append(results, result)

			continue
		}

		images = append(images, img)
	}

	return images, results
}

// onlyRequested keeps the images named by one of the references.
func onlyRequested(locals []types.LocalImage, references []string) []types.LocalImage {
	requested := make(map[string]struct{}, len(references))
	for _, reference := range references {
		requested[reference] = struct{}{}
	}

	kept := locals[:0:0]

	for _, local := range locals {
		if _, ok := requested[local.Reference]; ok {
			kept = append(kept, local)
		}
	}

	return kept
}

// batchByRegistry groups image indices by registry in first-seen order.
func batchByRegistry(images []*check.Image) []*registryBatch {
	var batches []*registryBatch

	byRegistry := make(map[string]*registryBatch)

	for index, img := range images {
		batch, ok := byRegistry[img.Parts.Registry]
		if !ok {
			batch = &registryBatch{registry: img.Parts.Registry}
			byRegistry[img.Parts.Registry] = batch
			batches = append(batches, batch)
		}

		batch.images = append(batch.images, index)
	}

	return batches
}

// authenticate resolves every registry's token concurrently.
//
// Each goroutine writes only its own batch.
func (o *Orchestrator) authenticate(ctx context.Context, images []*check.Image, batches []*registryBatch) {
	var group errgroup.Group

	for _, batch := range batches {
		repositories := make([]string, 0, len(batch.images))
		for _, index := range batch.images {
			repositories = append(repositories, images[index].Parts.Repository)
		}

		group.Go(func() error {
			batch.token, batch.err = o.registry.Authenticate(ctx, batch.registry, repositories)
			if batch.err != nil {
				logrus.WithError(batch.err).
					WithField("registry", batch.registry).
					Warn("Failed to authenticate with registry")
			}

			return nil
		})
	}

	_ = group.Wait()
}
