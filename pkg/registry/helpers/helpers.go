// Package helpers provides utility functions for registry-related operations in Cup.
// It includes methods for splitting image references into registry parts and normalizing digests.
package helpers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/distribution/reference"
	"github.com/opencontainers/go-digest"

	"github.com/nicholas-fedor/cup/pkg/types"
)

// Domains for Docker Hub, the default registry.
const (
	DefaultRegistryDomain       = "docker.io"
	DefaultRegistryHost         = "registry-1.docker.io"
	LegacyDefaultRegistryDomain = "index.docker.io"
	DefaultTag                  = "latest"
)

// Errors for reference handling.
var (
	// errFailedParseReference indicates an image reference that is not a valid docker reference.
	errFailedParseReference = errors.New("failed to parse image reference")
	// errInvalidDigest indicates a digest that is not a valid "algorithm:hex" value.
	errInvalidDigest = errors.New("invalid digest")
)

// Split derives the registry API host, the repository path and the tag from an image reference.
//
// Docker Hub references resolve to registry-1.docker.io, single-segment Hub names gain the
// "library/" prefix, a missing tag becomes "latest" and a digest suffix is dropped.
//
// Parameters:
//   - imageRef: Reference such as "nginx", "ghcr.io/org/app:1.2" or "localhost:5000/app@sha256:...".
//
// Returns:
//   - types.Parts: The split reference.
//   - error: Non-nil if the reference cannot be parsed.
func Split(imageRef string) (types.Parts, error) {
	named, err := reference.ParseNormalizedNamed(imageRef)
	if err != nil {
		return types.Parts{}, fmt.Errorf("%w: %q: %w", errFailedParseReference, imageRef, err)
	}

	tag := DefaultTag
	if tagged, ok := named.(reference.Tagged); ok {
		tag = tagged.Tag()
	}

	return types.Parts{
		Registry:   RegistryHost(reference.Domain(named)),
		Repository: reference.Path(named),
		Tag:        tag,
	}, nil
}

// RegistryHost maps Docker Hub domains to the host serving its registry API.
func RegistryHost(domain string) string {
	if domain == DefaultRegistryDomain || domain == LegacyDefaultRegistryDomain {
		return DefaultRegistryHost
	}

	return domain
}

// NormalizeDigest strips the "name@" prefix of a repo digest and validates the remainder.
//
// Parameters:
//   - repoDigest: A value such as "nginx@sha256:abc..." or "sha256:abc...".
//
// Returns:
//   - string: The bare digest.
//   - error: Non-nil if the digest is not a valid "algorithm:hex" value.
func NormalizeDigest(repoDigest string) (string, error) {
	value := repoDigest
	if index := strings.LastIndex(value, "@"); index >= 0 {
		value = value[index+1:]
	}

	parsed, err := digest.Parse(value)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", errInvalidDigest, repoDigest, err)
	}

	return parsed.String(), nil
}

// Scheme returns the URL scheme used for a registry.
func Scheme(insecure bool) string {
	if insecure {
		return "http"
	}

	return "https"
}
