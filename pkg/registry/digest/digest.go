// Package digest retrieves manifest digests from container registries.
// It issues HEAD requests against the manifest endpoint and compares the returned digest with local ones.
package digest

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/cup/pkg/registry/helpers"
	"github.com/nicholas-fedor/cup/pkg/registry/manifest"
	"github.com/nicholas-fedor/cup/pkg/registry/transport"
	"github.com/nicholas-fedor/cup/pkg/types"
)

// ContentDigestHeader is the HTTP header key holding the manifest digest.
const ContentDigestHeader = "Docker-Content-Digest"

// Docker manifest media types not covered by the OCI image-spec constants.
const (
	MediaTypeDockerManifest     = "application/vnd.docker.distribution.manifest.v2+json"
	MediaTypeDockerManifestList = "application/vnd.docker.distribution.manifest.list.v2+json"
)

// AcceptedMediaTypes lists the manifest types requested from registries, in header order.
var AcceptedMediaTypes = []string{
	MediaTypeDockerManifest,
	MediaTypeDockerManifestList,
	ocispec.MediaTypeImageIndex,
}

// GetDigest fetches the digest of the manifest the image's tag points to.
//
// Parameters:
//   - ctx: Context for the request.
//   - client: Shared registry transport.
//   - parts: Registry, repository and tag of the image.
//   - insecure: Whether the registry is served over plain HTTP.
//   - token: Bearer token, empty for anonymous access.
//
// Returns:
//   - string: The remote digest, e.g. "sha256:abc...".
//   - error: Transport, status or transport.ErrMalformedResponse errors.
func GetDigest(
	ctx context.Context,
	client *transport.Client,
	parts types.Parts,
	insecure bool,
	token string,
) (string, error) {
	manifestURL := manifest.BuildManifestURL(parts, insecure)
	fields := logrus.Fields{
		"registry":   parts.Registry,
		"repository": parts.Repository,
		"tag":        parts.Tag,
	}

	header := http.Header{}
	header.Set("Accept", strings.Join(AcceptedMediaTypes, ", "))

	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(ctx, http.MethodHead, manifestURL, header)
	if err != nil {
		logrus.WithError(err).WithFields(fields).Debug("Failed to execute request")

		return "", err
	}
	defer resp.Body.Close()

	if err := transport.CheckStatus(resp, token != ""); err != nil {
		return "", err
	}

	value := resp.Header.Get(ContentDigestHeader)
	if value == "" {
		logrus.WithFields(fields).WithField("status", resp.Status).
			Debug("Registry responded without a digest header")

		return "", fmt.Errorf(
			"%w: missing %s header from %s",
			transport.ErrMalformedResponse,
			ContentDigestHeader,
			manifestURL,
		)
	}

	remote, err := helpers.NormalizeDigest(value)
	if err != nil {
		return "", fmt.Errorf("%w: %w", transport.ErrMalformedResponse, err)
	}

	logrus.WithFields(fields).WithField("remote_digest", remote).Debug("Fetched remote digest")

	return remote, nil
}

// Matches reports whether the remote digest equals any of the local ones.
//
// Local values may carry a "name@" prefix; malformed entries never match.
func Matches(localDigests []string, remote string) bool {
	for _, local := range localDigests {
		normalized, err := helpers.NormalizeDigest(local)
		if err != nil {
			continue
		}

		if normalized == remote {
			return true
		}
	}

	return false
}
