package check

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/cup/pkg/registry/digest"
	"github.com/nicholas-fedor/cup/pkg/types"
	"github.com/nicholas-fedor/cup/pkg/version"
)

// Ignore levels for version updates.
const (
	IgnoreNone  = "none"
	IgnoreMajor = "major"
	IgnoreMinor = "minor"
	IgnorePatch = "patch"
)

var (
	// errUnknownIgnoreLevel indicates an unsupported ignore_update_type value.
	errUnknownIgnoreLevel = errors.New("unknown update type to ignore")
	// errNoComparableTags indicates a registry without any tag comparable to the local one.
	errNoComparableTags = errors.New("no remote tags match the local tag format")
)

// Registry is the registry access needed to check images.
type Registry interface {
	// Digest fetches the remote digest of an image's tag.
	Digest(ctx context.Context, parts types.Parts, token string) (string, error)
	// LatestTag returns the newest remote tag comparable with local.
	LatestTag(
		ctx context.Context,
		parts types.Parts,
		token string,
		strategy version.Strategy,
		local version.Tag,
	) (version.Tag, bool, error)
}

// Checker checks images against their registry.
type Checker struct {
	registry Registry
	// ignoreFrom is the least severe version update still reported as available.
	ignoreFrom types.Status
}

// ParseIgnoreLevel converts an ignore_update_type value to the first status it suppresses.
//
// "major" suppresses all version updates, "minor" suppresses minor and patch updates and "patch"
// only patch updates. Digest updates are never suppressed.
//
// Returns:
//   - types.Status: First suppressed status, StatusAvailable when nothing is suppressed.
//   - error: Non-nil for unknown values.
func ParseIgnoreLevel(value string) (types.Status, error) {
	switch strings.ToLower(value) {
	case "", IgnoreNone:
		return types.StatusAvailable, nil
	case IgnoreMajor:
		return types.StatusMajor, nil
	case IgnoreMinor:
		return types.StatusMinor, nil
	case IgnorePatch:
		return types.StatusPatch, nil
	default:
		return types.StatusAvailable, fmt.Errorf("%w: %q", errUnknownIgnoreLevel, value)
	}
}

// NewChecker creates a checker.
//
// Parameters:
//   - registry: Registry access.
//   - ignoreFrom: Result of ParseIgnoreLevel.
//
// Returns:
//   - *Checker: The checker.
func NewChecker(registry Registry, ignoreFrom types.Status) *Checker {
	return &Checker{registry: registry, ignoreFrom: ignoreFrom}
}

// Check determines the update status of one image.
//
// Every failure is reported as StatusUnknown on the returned result.
//
// Parameters:
//   - ctx: Context for the registry requests.
//   - img: The prepared image.
//   - token: The registry's bearer token, empty for anonymous access.
//
// Returns:
//   - types.CheckResult: The finalized result.
func (c *Checker) Check(ctx context.Context, img *Image, token string) types.CheckResult {
	start := time.Now()
	clog := logrus.WithFields(logrus.Fields{
		"image": img.Reference,
		"mode":  img.Mode(),
	})

	var (
		result types.CheckResult
		err    error
	)

	if img.Tag != nil {
		result, err = c.checkVersion(ctx, img, token)
	} else {
		result, err = c.checkDigest(ctx, img, token)
	}

	if err != nil {
		clog.WithError(err).Debug("Check failed")

		result = types.Unknown(img.Reference, img.Parts, err.Error())
		result.Mode = img.Mode()
	}

	c.applyIgnore(&result)

	result.UsedBy = img.UsedBy
	result.Elapsed = time.Since(start)
	result.Finalize()

	clog.WithField("status", result.Status.String()).Debug("Checked image")

	return result
}

// checkVersion compares the local tag with the newest comparable remote tag.
func (c *Checker) checkVersion(ctx context.Context, img *Image, token string) (types.CheckResult, error) {
	best, ok, err := c.registry.LatestTag(ctx, img.Parts, token, img.Strategy, *img.Tag)
	if err != nil {
		return types.CheckResult{}, err
	}

	if !ok {
		return types.CheckResult{}, errNoComparableTags
	}

	status, err := img.Strategy.Classify(best, *img.Tag)
	if err != nil {
		return types.CheckResult{}, err
	}

	if status == types.StatusUpToDate && len(img.Digests) > 0 {
		return c.checkDigest(ctx, img, token)
	}

	return types.CheckResult{
		Reference: img.Reference,
		Parts:     img.Parts,
		Status:    status,
		Mode:      types.ModeVersion,
		Result: types.UpdateResult{
			Info: &types.UpdateInfo{
				Type:              string(types.ModeVersion),
				VersionUpdateType: status.UpdateType(),
				NewTag:            best.Text,
				CurrentVersion:    img.Tag.Version(),
				NewVersion:        best.Version(),
			},
		},
	}, nil
}

// checkDigest compares the local digests with the remote digest of the same tag.
func (c *Checker) checkDigest(ctx context.Context, img *Image, token string) (types.CheckResult, error) {
	if len(img.Digests) == 0 {
		return types.CheckResult{}, ErrNoVersionOrDigest
	}

	remote, err := c.registry.Digest(ctx, img.Parts, token)
	if err != nil {
		return types.CheckResult{}, err
	}

	status := types.StatusAvailable
	if digest.Matches(img.Digests, remote) {
		status = types.StatusUpToDate
	}

	return types.CheckResult{
		Reference: img.Reference,
		Parts:     img.Parts,
		Status:    status,
		Mode:      types.ModeDigest,
		Result: types.UpdateResult{
			Info: &types.UpdateInfo{
				Type:         string(types.ModeDigest),
				LocalDigests: img.Digests,
				RemoteDigest: remote,
			},
		},
	}, nil
}

// applyIgnore reports suppressed version updates as up to date.
func (c *Checker) applyIgnore(result *types.CheckResult) {
	if !result.Status.IsVersionUpdate() || result.Status < c.ignoreFrom {
		return
	}

	logrus.WithFields(logrus.Fields{
		"image":  result.Reference,
		"status": result.Status.String(),
	}).Debug("Ignoring update by configuration")

	result.Status = types.StatusUpToDate
}
