package check

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/cup/pkg/filters"
	"github.com/nicholas-fedor/cup/pkg/registry/helpers"
	"github.com/nicholas-fedor/cup/pkg/types"
	"github.com/nicholas-fedor/cup/pkg/version"
)

// ErrNoVersionOrDigest indicates an image that can be compared neither by version nor by digest.
var ErrNoVersionOrDigest = errors.New("image has no parseable version and no local digest")

// Image is an image prepared for checking.
type Image struct {
	Reference string
	Parts     types.Parts
	// Digests are the normalized local digests.
	Digests []string
	UsedBy  []string
	// Strategy is the versioning scheme selected for the image.
	Strategy version.Strategy
	// Tag is the parsed local tag; nil selects digest comparison.
	Tag *version.Tag
}

// Mode returns the comparison mode fixed at ingestion.
func (i *Image) Mode() types.Mode {
	if i.Tag != nil {
		return types.ModeVersion
	}

	return types.ModeDigest
}

// NewImage prepares a local image for checking.
//
// Parameters:
//   - local: The image as reported by the image source.
//   - rules: Version rules selecting the scheme, may be nil for the standard scheme.
//
// Returns:
//   - *Image: The prepared image.
//   - error: Reference or rule errors, or ErrNoVersionOrDigest.
func NewImage(local types.LocalImage, rules *filters.VersionRules) (*Image, error) {
	parts, err := helpers.Split(local.Reference)
	if err != nil {
		return nil, err
	}

	rule, _ := rules.Select(local.Reference)

	strategy, err := version.FromRule(rule)
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", local.Reference, err)
	}

	img := &Image{
		Reference: local.Reference,
		Parts:     parts,
		UsedBy:    local.UsedBy,
		Strategy:  strategy,
	}

	for _, repoDigest := range local.Digests {
		normalized, err := helpers.NormalizeDigest(repoDigest)
		if err != nil {
			logrus.WithError(err).WithField("image", local.Reference).Warn("Ignoring invalid local digest")

			continue
		}

		img.Digests = append(img.Digests, normalized)
	}

	if tag, err := strategy.Parse(parts.Tag); err == nil {
		img.Tag = &tag
	} else {
		logrus.WithFields(logrus.Fields{
			"image":  local.Reference,
			"tag":    parts.Tag,
			"scheme": strategy.Kind(),
		}).Debug("Tag is not a version, comparing digests")
	}

	if img.Tag == nil && len(img.Digests) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoVersionOrDigest, local.Reference)
	}

	return img, nil
}
