package flags

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nicholas-fedor/cup/pkg/types"
)

// Errors for configuration loading.
var (
	// errReadConfigFailed indicates the configuration file could not be read or parsed.
	errReadConfigFailed = errors.New("failed to read config file")
	// errDecodeConfigFailed indicates the configuration does not match the schema.
	errDecodeConfigFailed = errors.New("failed to decode config file")
	// ErrUnsupportedConfigVersion indicates a configuration file written for another schema version.
	ErrUnsupportedConfigVersion = errors.New("unsupported config version")
)

// keyDelimiter separates nested configuration keys.
// Registry hosts contain dots, so viper's default delimiter cannot be used.
const keyDelimiter = "::"

// LoadConfig reads the configuration file.
//
// The format is chosen from the file extension (JSON or YAML). Keys are case-insensitive, so
// registry hosts and server names are folded to lower case.
//
// Parameters:
//   - path: Path of the file; empty returns the default configuration.
//
// Returns:
//   - *types.Config: The configuration.
//   - error: Non-nil if the file cannot be read or decoded, or its version is not types.ConfigVersion.
func LoadConfig(path string) (*types.Config, error) {
	config := &types.Config{Version: types.ConfigVersion}
	if path == "" {
		logrus.Debug("No config file given, using defaults")

		return config, nil
	}

	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errReadConfigFailed, path, err)
	}

	config = &types.Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errDecodeConfigFailed, path, err)
	}

	if config.Version != types.ConfigVersion {
		return nil, fmt.Errorf(
			"%w: %s has version %d, expected %d",
			ErrUnsupportedConfigVersion,
			path,
			config.Version,
			types.ConfigVersion,
		)
	}

	logrus.WithFields(logrus.Fields{
		"path":       path,
		"registries": len(config.Registries),
		"servers":    len(config.Servers),
		"extra":      len(config.Images.Extra),
		"rules":      len(config.Images.Versions),
	}).Debug("Loaded config file")

	return config, nil
}

// ApplyOverrides merges flag and CUP_ environment values into the configuration.
//
// Flags and variables win over the file. A boolean overrides the file only when the flag was
// given or its variable is set. Notification URLs are appended to the configured ones.
//
// Parameters:
//   - flags: The command's flags; flags that were not registered are skipped.
//   - config: The configuration to update.
func ApplyOverrides(flags *pflag.FlagSet, config *types.Config) {
	if value, ok := stringOverride(flags, "socket"); ok {
		config.Socket = value
	}

	if value, ok := stringOverride(flags, "ignore-update-type"); ok {
		config.IgnoreUpdateType = value
	}

	if value, ok := stringOverride(flags, "refresh-interval"); ok {
		config.RefreshInterval = value
	}

	if flags.Lookup("agent") != nil && (flags.Changed("agent") || isEnvSet("CUP_AGENT")) {
		config.Agent, _ = flags.GetBool("agent")
	}

	if flags.Lookup("notification-url") != nil {
		urls, _ := flags.GetStringArray("notification-url")
		config.Notifications.URLs = append(config.Notifications.URLs, urls...)
	}
}

// stringOverride returns a registered string flag's value if it is not empty.
func stringOverride(flags *pflag.FlagSet, name string) (string, bool) {
	if flags.Lookup(name) == nil {
		return "", false
	}

	value, err := flags.GetString(name)
	if err != nil || value == "" {
		return "", false
	}

	return value, true
}

func isEnvSet(key string) bool {
	_, ok := os.LookupEnv(key)

	return ok
}
