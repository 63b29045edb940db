// Package manifest builds the OCI distribution API URLs used by Cup.
// It constructs the API base, manifest and tag-list URLs for a registry host and repository.
package manifest

import (
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/cup/pkg/registry/helpers"
	"github.com/nicholas-fedor/cup/pkg/types"
)

// BuildBaseURL returns the API version check URL ("/v2/") of a registry.
//
// Parameters:
//   - registry: Registry host, with an optional port.
//   - insecure: Whether the registry is served over plain HTTP.
//
// Returns:
//   - string: The URL, e.g. "https://ghcr.io/v2/".
func BuildBaseURL(registry string, insecure bool) string {
	u := url.URL{
		Scheme: helpers.Scheme(insecure),
		Host:   registry,
		Path:   "/v2/",
	}

	return u.String()
}

// BuildManifestURL returns the manifest URL of the image's tag.
//
// Parameters:
//   - parts: Registry, repository and tag of the image.
//   - insecure: Whether the registry is served over plain HTTP.
//
// Returns:
//   - string: The URL, e.g. "https://ghcr.io/v2/org/app/manifests/1.2".
func BuildManifestURL(parts types.Parts, insecure bool) string {
	u := url.URL{
		Scheme: helpers.Scheme(insecure),
		Host:   parts.Registry,
		Path:   fmt.Sprintf("/v2/%s/manifests/%s", parts.Repository, parts.Tag),
	}
	urlStr := u.String()

	logrus.WithFields(logrus.Fields{
		"registry":   parts.Registry,
		"repository": parts.Repository,
		"tag":        parts.Tag,
		"url":        urlStr,
	}).Trace("Built manifest URL")

	return urlStr
}

// BuildTagsURL returns the first page URL of the repository's tag list.
func BuildTagsURL(parts types.Parts, insecure bool) string {
	u := url.URL{
		Scheme: helpers.Scheme(insecure),
		Host:   parts.Registry,
		Path:   fmt.Sprintf("/v2/%s/tags/list", parts.Repository),
	}

	return u.String()
}
