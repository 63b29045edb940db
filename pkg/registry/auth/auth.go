// Package auth implements registry authentication discovery and bearer-token exchange.
// It probes a registry's version endpoint for a WWW-Authenticate challenge and requests a single
// token covering every repository checked on that registry.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/docker/distribution/registry/client/auth/challenge"
	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/cup/pkg/registry/manifest"
	"github.com/nicholas-fedor/cup/pkg/registry/transport"
)

// ChallengeHeader is the HTTP header containing challenge instructions.
const ChallengeHeader = "WWW-Authenticate"

// bearerScheme is the only challenge scheme supported.
const bearerScheme = "bearer"

// Errors for authentication.
var (
	// ErrUnsupportedChallenge indicates a registry asking for a scheme other than Bearer.
	ErrUnsupportedChallenge = errors.New("unsupported challenge type from registry")
	// errNoChallenge indicates a 401 without any WWW-Authenticate challenge.
	errNoChallenge = errors.New("registry requires authentication but sent no challenge")
	// errInvalidChallengeHeader indicates a Bearer challenge without a realm.
	errInvalidChallengeHeader = errors.New(
		"challenge header did not include all values needed to construct an auth url",
	)
	// errInvalidRealm indicates a realm that is not a valid URL.
	errInvalidRealm = errors.New("challenge realm is not a valid url")
	// errEmptyToken indicates a token response without a token.
	errEmptyToken = errors.New("token response did not contain a token")
)

// Challenge holds the Bearer challenge parameters of a registry.
type Challenge struct {
	Realm   string
	Service string
}

// TokenResponse is the body returned by a token endpoint.
type TokenResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
}

// ProbeAuth discovers whether a registry requires authentication.
//
// A 200 response means anonymous access. A 401 must carry a Bearer challenge. Any other status or a
// network failure is logged and treated as anonymous access, leaving the per-image requests to report it.
//
// Parameters:
//   - ctx: Context for the request.
//   - client: Shared registry transport.
//   - registry: Registry host.
//   - insecure: Whether the registry is served over plain HTTP.
//
// Returns:
//   - *Challenge: The challenge, nil when no authentication is required.
//   - error: ErrUnsupportedChallenge or transport.ErrMalformedResponse for unusable challenges.
func ProbeAuth(
	ctx context.Context,
	client *transport.Client,
	registry string,
	insecure bool,
) (*Challenge, error) {
	fields := logrus.Fields{"registry": registry}
	url := manifest.BuildBaseURL(registry, insecure)

	resp, err := client.Do(ctx, http.MethodGet, url, http.Header{"Accept": []string{"*/*"}})
	if err != nil {
		logrus.WithError(err).WithFields(fields).Warn("Failed to probe registry authentication, continuing without")

		return nil, nil
	}
	defer resp.Body.Close()

	logrus.WithFields(fields).WithFields(logrus.Fields{
		"status": resp.Status,
		"header": resp.Header.Get(ChallengeHeader),
	}).Debug("Got response to challenge request")

	switch resp.StatusCode {
	case http.StatusOK:
		return nil, nil
	case http.StatusUnauthorized:
		return parseChallenge(resp, registry)
	default:
		logrus.WithFields(fields).
			WithField("status", resp.StatusCode).
			Warn("Unexpected response to registry version check, continuing without authentication")

		return nil, nil
	}
}

// parseChallenge extracts the Bearer challenge from a 401 response.
func parseChallenge(resp *http.Response, registry string) (*Challenge, error) {
	challenges := challenge.ResponseChallenges(resp)
	if len(challenges) == 0 {
		return nil, fmt.Errorf("%w: %w: %s", transport.ErrAuthRequired, errNoChallenge, registry)
	}

	for _, c := range challenges {
		if c.Scheme != bearerScheme {
			continue
		}

		realm := c.Parameters["realm"]
		if realm == "" {
			return nil, fmt.Errorf(
				"%w: %w: %s",
				transport.ErrMalformedResponse,
				errInvalidChallengeHeader,
				registry,
			)
		}

		logrus.WithFields(logrus.Fields{
			"registry": registry,
			"realm":    realm,
			"service":  c.Parameters["service"],
		}).Debug("Found bearer challenge")

		return &Challenge{Realm: realm, Service: c.Parameters["service"]}, nil
	}

	return nil, fmt.Errorf("%w: %q from %s", ErrUnsupportedChallenge, challenges[0].Scheme, registry)
}

// BuildTokenURL builds the token request URL with one pull scope per distinct repository.
//
// The service parameter precedes the scopes, matching the order registries document.
//
// Parameters:
//   - c: The registry's challenge.
//   - repositories: Repositories to include; duplicates are dropped, first-seen order kept.
//
// Returns:
//   - *url.URL: The token URL.
//   - error: Non-nil if the realm is not a valid URL.
func BuildTokenURL(c Challenge, repositories []string) (*url.URL, error) {
	authURL, err := url.Parse(c.Realm)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", transport.ErrMalformedResponse, errInvalidRealm, err)
	}

	// Scopes are written unescaped; repository names cannot contain reserved characters.
	params := make([]string, 0, len(repositories)+2)
	if authURL.RawQuery != "" {
		params = append(params, authURL.RawQuery)
	}

	if c.Service != "" {
		params = append(params, "service="+url.QueryEscape(c.Service))
	}

	seen := make(map[string]struct{}, len(repositories))

	for _, repository := range repositories {
		if _, ok := seen[repository]; ok {
			continue
		}

		seen[repository] = struct{}{}

		params = append(params, fmt.Sprintf("scope=repository:%s:pull", repository))
	}

	authURL.RawQuery = strings.Join(params, "&")

	return authURL, nil
}

// GetToken requests one bearer token for all repositories of a registry.
//
// Parameters:
//   - ctx: Context for the request.
//   - client: Shared registry transport.
//   - c: The registry's challenge.
//   - repositories: Repositories checked on the registry.
//   - credentials: Base64 "user:password" sent as Basic auth, empty for anonymous tokens.
//
// Returns:
//   - string: The token.
//   - error: Transport, status or transport.ErrMalformedResponse errors.
func GetToken(
	ctx context.Context,
	client *transport.Client,
	c Challenge,
	repositories []string,
	credentials string,
) (string, error) {
	authURL, err := BuildTokenURL(c, repositories)
	if err != nil {
		return "", err
	}

	header := http.Header{}
	if credentials != "" {
		logrus.Debug("Credentials found.")
		header.Set("Authorization", "Basic "+credentials)
	} else {
		logrus.Debug("No credentials found.")
	}

	resp, err := client.Do(ctx, http.MethodGet, authURL.String(), header)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := transport.CheckStatus(resp, credentials != ""); err != nil {
		return "", err
	}

	tokenResponse := &TokenResponse{}
	if err := json.NewDecoder(resp.Body).Decode(tokenResponse); err != nil {
		return "", fmt.Errorf("%w: token response: %w", transport.ErrMalformedResponse, err)
	}

	token := tokenResponse.Token
	if token == "" {
		token = tokenResponse.AccessToken
	}

	if token == "" {
		return "", fmt.Errorf("%w: %w", transport.ErrMalformedResponse, errEmptyToken)
	}

	logrus.WithFields(logrus.Fields{
		"realm":        c.Realm,
		"repositories": len(repositories),
	}).Debug("Retrieved bearer token")

	return token, nil
}
