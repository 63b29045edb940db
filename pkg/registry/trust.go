package registry

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	dockerCliConfig "github.com/docker/cli/cli/config"
	dockerConfigTypes "github.com/docker/cli/cli/config/types"

	"github.com/nicholas-fedor/cup/pkg/registry/helpers"
	"github.com/nicholas-fedor/cup/pkg/types"
)

// DockerHubServerAddress is the key Docker Hub credentials are stored under by the docker CLI.
const DockerHubServerAddress = "https://index.docker.io/v1/"

// errFailedLoadDockerConfig indicates a failure to load the Docker configuration file.
var errFailedLoadDockerConfig = errors.New("failed to load Docker config")

// Credentials returns the Basic credentials used for a registry's token requests.
//
// The registry's "authentication" setting wins; otherwise the docker CLI configuration
// (DOCKER_CONFIG or ~/.docker) and its credential helpers are consulted.
//
// Parameters:
//   - config: Cup configuration, may be nil.
//   - registry: Registry host as found in image parts.
//
// Returns:
//   - string: Base64 "user:password", empty for anonymous access.
func Credentials(config *types.Config, registry string) string {
	if auth := config.RegistryConfig(registry).Authentication; auth != "" {
		logrus.WithField("registry", registry).Debug("Using configured registry credentials")

		return auth
	}

	auth, err := EncodedConfigAuth(registry)
	if err != nil {
		logrus.WithError(err).WithField("registry", registry).Debug("No docker config credentials")

		return ""
	}

	return auth
}

// EncodedConfigAuth looks up a registry's credentials in the docker CLI configuration.
//
// Parameters:
//   - registry: Registry host as found in image parts.
//
// Returns:
//   - string: Base64 "user:password", empty when no credentials are stored.
//   - error: Non-nil if the configuration cannot be loaded.
func EncodedConfigAuth(registry string) (string, error) {
	server := ServerAddress(registry)
	fields := logrus.Fields{"registry": registry, "server": server}

	configFile, err := dockerCliConfig.Load(os.Getenv("DOCKER_CONFIG"))
	if err != nil {
		return "", fmt.Errorf("%w: %w", errFailedLoadDockerConfig, err)
	}

	auth, err := configFile.GetAuthConfig(server)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errFailedLoadDockerConfig, err)
	}

	if auth.Username == "" && auth.Password == "" {
		logrus.WithFields(fields).
			WithField("config_file", configFile.Filename).
			Debug("No credentials found in config")

		return "", nil
	}

	logrus.WithFields(fields).WithFields(logrus.Fields{
		"username":    auth.Username,
		"config_file": configFile.Filename,
	}).Debug("Loaded auth credentials from config")

	if logrus.GetLevel() == logrus.TraceLevel {
		logrus.WithFields(fields).WithFields(logrus.Fields{
			"username": auth.Username,
			"password": auth.Password,
		}).Trace("Using config credentials")
	}

	return EncodeAuth(auth), nil
}

// ServerAddress maps a registry host to the key the docker CLI stores its credentials under.
func ServerAddress(registry string) string {
	if registry == helpers.DefaultRegistryHost ||
		registry == helpers.DefaultRegistryDomain ||
		registry == helpers.LegacyDefaultRegistryDomain {
		return DockerHubServerAddress
	}

	return registry
}

// EncodeAuth encodes a username and password for a Basic Authorization header.
func EncodeAuth(authConfig dockerConfigTypes.AuthConfig) string {
	return base64.StdEncoding.EncodeToString([]byte(authConfig.Username + ":" + authConfig.Password))
}
