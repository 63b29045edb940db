package registry

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/cup/pkg/registry/auth"
	"github.com/nicholas-fedor/cup/pkg/registry/digest"
	"github.com/nicholas-fedor/cup/pkg/registry/tags"
	"github.com/nicholas-fedor/cup/pkg/registry/transport"
	"github.com/nicholas-fedor/cup/pkg/types"
	"github.com/nicholas-fedor/cup/pkg/version"
)

// Client speaks the OCI distribution protocol to every configured registry.
//
// It holds no per-request state and is shared by all concurrent checks.
type Client struct {
	transport *transport.Client
	config    *types.Config
}

// NewClient creates a registry client.
//
// Parameters:
//   - t: Shared retrying transport.
//   - config: Cup configuration providing per-registry options, may be nil.
//
// Returns:
//   - *Client: The client.
func NewClient(t *transport.Client, config *types.Config) *Client {
	return &Client{transport: t, config: config}
}

// Insecure reports whether a registry is configured for plain HTTP.
func (c *Client) Insecure(registry string) bool {
	return c.config.RegistryConfig(registry).Insecure
}

// Authenticate resolves the token shared by all checks against a registry.
//
// Parameters:
//   - ctx: Context for the requests.
//   - registry: Registry host.
//   - repositories: Every repository checked on the registry.
//
// Returns:
//   - string: Bearer token, empty when the registry allows anonymous access.
//   - error: Challenge or token errors, scoped to this registry by the caller.
func (c *Client) Authenticate(
	ctx context.Context,
	registry string,
	repositories []string,
) (string, error) {
	challenge, err := auth.ProbeAuth(ctx, c.transport, registry, c.Insecure(registry))
	if err != nil {
		return "", err
	}

	if challenge == nil {
		logrus.WithField("registry", registry).Debug("Registry allows anonymous access")

		return "", nil
	}

	return auth.GetToken(ctx, c.transport, *challenge, repositories, Credentials(c.config, registry))
}

// Digest fetches the remote digest of an image's tag.
func (c *Client) Digest(ctx context.Context, parts types.Parts, token string) (string, error) {
	return digest.GetDigest(ctx, c.transport, parts, c.Insecure(parts.Registry), token)
}

// LatestTag lists the repository's tags and returns the newest one comparable with local.
//
// Parameters:
//   - ctx: Context for the requests.
//   - parts: Registry, repository and tag of the image.
//   - token: Bearer token, empty for anonymous access.
//   - strategy: Versioning scheme of the image.
//   - local: Parsed local tag.
//
// Returns:
//   - version.Tag: The newest comparable tag.
//   - bool: false if no remote tag is comparable.
//   - error: Listing errors.
func (c *Client) LatestTag(
	ctx context.Context,
	parts types.Parts,
	token string,
	strategy version.Strategy,
	local version.Tag,
) (version.Tag, bool, error) {
	return tags.Best(ctx, c.transport, tags.Request{
		Parts:    parts,
		Insecure: c.Insecure(parts.Registry),
		Token:    token,
		Strategy: strategy,
		Local:    local,
	})
}
