package container

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	cerrdefs "github.com/containerd/errdefs"
	dockerContainerType "github.com/docker/docker/api/types/container"
	dockerImageType "github.com/docker/docker/api/types/image"

	"github.com/nicholas-fedor/cup/pkg/types"
)

// untagged is the tag the engine reports for dangling images.
const untagged = "<none>:<none>"

// Images returns the engine's tagged images followed by the requested references.
//
// A local image is named by its first repository tag and carries its repository digests. Requested
// references already in the local set are skipped; others are inspected and become reference-only
// entries when the engine does not know them or fails to inspect them.
//
// Parameters:
//   - ctx: Context for the engine requests.
//   - references: Additional references to check.
//
// Returns:
//   - []types.LocalImage: The worklist.
//   - error: Non-nil if the engine could not list images or containers.
func (c *Client) Images(ctx context.Context, references []string) ([]types.LocalImage, error) {
	summaries, err := c.api.ImageList(ctx, dockerImageType.ListOptions{})
	if err != nil {
		logrus.WithError(err).Debug("Failed to list images")

		return nil, fmt.Errorf("%w: %w", errListImagesFailed, err)
	}

	usedBy, err := c.usedBy(ctx)
	if err != nil {
		return nil, err
	}

	var (
		images []types.LocalImage
		known  = make(map[string]struct{}, len(summaries))
	)

	for _, summary := range summaries {
		reference := firstTag(summary.RepoTags)
		if reference == "" {
			continue
		}

		known[reference] = struct{}{}

		images = append(images, types.LocalImage{
			Reference: reference,
			Digests:   slices.Clone(summary.RepoDigests),
			UsedBy:    usedBy[summary.ID],
		})
	}

	logrus.WithField("count", len(images)).Debug("Listed local images")

	for _, reference := range references {
		if _, ok := known[reference]; ok {
			continue
		}

		known[reference] = struct{}{}

		image, err := c.inspect(ctx, reference, usedBy)
		if err != nil {
			// The registry check reports the reference on its own, e.g. as Unknown when it is malformed.
			logrus.WithError(err).WithField("image", reference).
				Warn("Failed to inspect requested image, checking by reference")

			image = types.LocalImage{Reference: reference}
		}

		images = append(images, image)
	}

	return images, nil
}

// usedBy maps image IDs to the names of the containers running them.
func (c *Client) usedBy(ctx context.Context) (map[string][]string, error) {
	containers, err := c.api.ContainerList(ctx, dockerContainerType.ListOptions{All: c.opts.IncludeStopped})
	if err != nil {
		logrus.WithError(err).Debug("Failed to list containers")

		return nil, fmt.Errorf("%w: %w", errListContainersFailed, err)
	}

	names := make(map[string][]string)

	for _, summary := range containers {
		if len(summary.Names) == 0 {
			continue
		}

		// The engine reports names with a leading slash.
		names[summary.ImageID] = append(names[summary.ImageID], strings.TrimPrefix(summary.Names[0], "/"))
	}

	for id := range names {
		slices.Sort(names[id])
	}

	return names, nil
}

// inspect resolves a requested reference against the local image store.
func (c *Client) inspect(
	ctx context.Context,
	reference string,
	usedBy map[string][]string,
) (types.LocalImage, error) {
	info, err := c.api.ImageInspect(ctx, reference)
	if err != nil {
		if cerrdefs.IsNotFound(err) {
			logrus.WithField("image", reference).Debug("Image not present locally, checking by reference")

			return types.LocalImage{Reference: reference}, nil
		}

		return types.LocalImage{}, fmt.Errorf("%w: %s: %w", errInspectImageFailed, reference, err)
	}

	return types.LocalImage{
		Reference: reference,
		Digests:   slices.Clone(info.RepoDigests),
		UsedBy:    usedBy[info.ID],
	}, nil
}

// firstTag returns the first usable repository tag.
func firstTag(tags []string) string {
	for _, tag := range tags {
		if tag != "" && tag != untagged {
			return tag
		}
	}

	return ""
}
