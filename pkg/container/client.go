package container

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	dockerClient "github.com/docker/docker/client"
)

// ClientOptions configures the engine client.
type ClientOptions struct {
	// Host is the engine socket path or URL; empty uses DOCKER_HOST or the platform default.
	Host string
	// IncludeStopped attributes images to stopped containers as well as running ones.
	IncludeStopped bool
}

// Client reads images and containers from a Docker-compatible engine.
type Client struct {
	api  dockerClient.APIClient
	opts ClientOptions
}

// NewClient initializes a client for the configured engine.
//
// The API version is negotiated with the engine unless DOCKER_API_VERSION forces one that the engine
// accepts.
//
// Parameters:
//   - opts: Options selecting the engine.
//
// Returns:
//   - *Client: Initialized client.
//   - error: Non-nil if the client could not be created.
func NewClient(opts ClientOptions) (*Client, error) {
	ctx := context.Background()

	clientOpts := []dockerClient.Opt{
		dockerClient.FromEnv,
		dockerClient.WithAPIVersionNegotiation(),
	}

	if host := hostURL(opts.Host); host != "" {
		clientOpts = append(clientOpts, dockerClient.WithHost(host))
	}

	cli, err := dockerClient.NewClientWithOpts(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errCreateClientFailed, err)
	}

	if version := strings.Trim(os.Getenv("DOCKER_API_VERSION"), "\""); version != "" {
		pingCli, err := dockerClient.NewClientWithOpts(
			dockerClient.WithHost(cli.DaemonHost()),
			dockerClient.WithVersion(version),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errCreateClientFailed, err)
		}

		if _, err := pingCli.Ping(ctx); err != nil && strings.Contains(err.Error(), "page not found") {
			logrus.WithFields(logrus.Fields{
				"version":  version,
				"error":    err,
				"endpoint": "/_ping",
			}).Warn("Invalid API version; falling back to autonegotiation")
			cli.NegotiateAPIVersion(ctx)
		} else {
			cli = pingCli
		}
	} else {
		cli.NegotiateAPIVersion(ctx)
	}

	logrus.WithFields(logrus.Fields{
		"host":           cli.DaemonHost(),
		"client_version": cli.ClientVersion(),
	}).Debug("Initialized Docker client")

	return NewClientWithAPI(cli, opts), nil
}

// NewClientWithAPI wraps an existing engine API client.
func NewClientWithAPI(api dockerClient.APIClient, opts ClientOptions) *Client {
	return &Client{api: api, opts: opts}
}

// hostURL turns a socket path into an engine URL; URLs pass through unchanged.
func hostURL(host string) string {
	if host == "" || strings.Contains(host, "://") {
		return host
	}

	return "unix://" + host
}

// APIVersion returns the engine API version negotiated by the client.
func (c *Client) APIVersion() string {
	return c.api.ClientVersion()
}
