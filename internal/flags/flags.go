package flags

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by Cup.
const EnvPrefix = "CUP_"

// defaultPort is the default HTTP server port.
const defaultPort = 8000

// errInvalidLogFormat indicates an invalid log format was specified.
var errInvalidLogFormat = errors.New("invalid log format specified")

// errInvalidLogLevel indicates an invalid log level was specified.
var errInvalidLogLevel = errors.New("invalid log level specified")

// errOpenFileFailed indicates a failure to open a file for reading secrets.
var errOpenFileFailed = errors.New("failed to open secret file")

// errCloseFileFailed indicates a failure to close a file after reading secrets.
var errCloseFileFailed = errors.New("failed to close secret file")

// errReplaceSliceFailed indicates a failure to replace a slice value in a flag.
var errReplaceSliceFailed = errors.New("failed to replace slice value in flag")

// errReadFileFailed indicates a failure to read a file’s contents.
var errReadFileFailed = errors.New("failed to read secret file")

// errSetFlagFailed indicates a failure to read or set a flag’s value.
var errSetFlagFailed = errors.New("failed to set flag value")

// errUndefinedFlag indicates a lookup of a flag that was never registered.
var errUndefinedFlag = errors.New("flag is not defined")

// RegisterSystemFlags adds the flags shared by every command to the root command.
// These flags control logging, the Docker connection and how images are checked.
func RegisterSystemFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()

	flags.StringP(
		"config",
		"c",
		envString("CUP_CONFIG"),
		"Path to the configuration file (JSON or YAML)")

	flags.StringP(
		"socket",
		"s",
		envString("CUP_SOCKET"),
		"Docker socket path or daemon URL; overrides the config file")

	flags.BoolP(
		"include-stopped",
		"S",
		envBool("CUP_INCLUDE_STOPPED"),
		"Also list stopped containers as image users")

	flags.Bool(
		"agent",
		envBool("CUP_AGENT"),
		"Only report local images, never query the configured servers")

	flags.String(
		"ignore-update-type",
		envString("CUP_IGNORE_UPDATE_TYPE"),
		"Report version bumps of this size or smaller as up to date. Possible values: none, major, minor, patch")

	flags.StringP(
		"log-format",
		"l",
		viper.GetString("CUP_LOG_FORMAT"),
		"Sets what logging format to use for console output. Possible values: Auto, LogFmt, Pretty, JSON")

	flags.String(
		"log-level",
		viper.GetString("CUP_LOG_LEVEL"),
		"The maximum log level that will be written to STDERR. Possible values: panic, fatal, error, warn, info, debug or trace")

	flags.BoolP(
		"debug",
		"v",
		envBool("CUP_DEBUG"),
		"Enable debug mode with verbose logging")

	flags.Bool(
		"trace",
		envBool("CUP_TRACE"),
		"Enable trace mode with very verbose logging - caution, exposes credentials")

	flags.Bool(
		"no-color",
		viper.IsSet("NO_COLOR"),
		"Disable ANSI color escape codes in output")

	flags.Bool(
		"no-startup-message",
		envBool("CUP_NO_STARTUP_MESSAGE"),
		"Do not log the startup message")
}

// RegisterNotificationFlags adds the notification flags to the root command.
func RegisterNotificationFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()

	flags.StringArray(
		"notification-url",
		envStringSlice("CUP_NOTIFICATION_URL"),
		"The shoutrrr URL to send notifications to; may be given more than once")

	flags.String(
		"notification-template",
		envString("CUP_NOTIFICATION_TEMPLATE"),
		"The shoutrrr text/template for the messages, or the name of a built-in template: default, summary, json.v1")

	flags.String(
		"notification-title-tag",
		envString("CUP_NOTIFICATION_TITLE_TAG"),
		"Title prefix tag for notifications")

	flags.Bool(
		"notification-skip-title",
		envBool("CUP_NOTIFICATION_SKIP_TITLE"),
		"Do not pass the title param to notifications")

	flags.String(
		"notifications-hostname",
		envString("CUP_NOTIFICATIONS_HOSTNAME"),
		"Custom hostname for notification titles")

	flags.Int(
		"notifications-delay",
		envInt("CUP_NOTIFICATIONS_DELAY"),
		"Delay before sending notifications, expressed in seconds")

	flags.Bool(
		"notification-log-stdout",
		envBool("CUP_NOTIFICATION_LOG_STDOUT"),
		"Write notification logs to stdout instead of logging (to stderr)")
}

// RegisterCheckFlags adds the flags of the check command.
func RegisterCheckFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.BoolP(
		"raw",
		"r",
		envBool("CUP_RAW"),
		"Output JSON instead of formatted text")

	flags.Bool(
		"full",
		envBool("CUP_FULL"),
		"With --raw, output the full report instead of the update flag per image")

	flags.BoolP(
		"icons",
		"i",
		envBool("CUP_ICONS"),
		"Prefix every line with a status icon")
}

// RegisterServeFlags adds the flags of the serve command.
func RegisterServeFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.IntP(
		"port",
		"p",
		viper.GetInt("CUP_PORT"),
		"Port to bind the HTTP server to")

	flags.String(
		"host",
		envString("CUP_HOST"),
		"Address to bind the HTTP server to; empty binds every interface")

	flags.String(
		"refresh-interval",
		envString("CUP_REFRESH_INTERVAL"),
		"Cron expression of the periodic refresh (5 or 6 fields); overrides the config file")

	flags.String(
		"api-token",
		envString("CUP_API_TOKEN"),
		"Bearer token required by the refresh endpoint")

	flags.Bool(
		"no-initial-refresh",
		envBool("CUP_NO_INITIAL_REFRESH"),
		"Do not refresh at startup; the report stays empty until the first scheduled or requested refresh")
}

// envString retrieves a string value from an environment variable via Viper.
// It binds the key to the environment and returns its value.
func envString(key string) string {
	viper.MustBindEnv(key)

	return viper.GetString(key)
}

// envStringSlice retrieves a string slice from an environment variable via Viper.
func envStringSlice(key string) []string {
	viper.MustBindEnv(key)

	return viper.GetStringSlice(key)
}

// envInt retrieves an integer value from an environment variable via Viper.
func envInt(key string) int {
	viper.MustBindEnv(key)

	return viper.GetInt(key)
}

// envBool retrieves a boolean value from an environment variable via Viper.
func envBool(key string) bool {
	viper.MustBindEnv(key)

	return viper.GetBool(key)
}

// SetDefaults configures default values for environment variables.
// It must run before the flags are registered.
func SetDefaults() {
	viper.AutomaticEnv()
	viper.SetDefault("CUP_PORT", defaultPort)
	viper.SetDefault("CUP_LOG_LEVEL", "info")
	viper.SetDefault("CUP_LOG_FORMAT", "auto")
}

// GetNotificationDelay returns the configured delay before each notification.
func GetNotificationDelay(flags *pflag.FlagSet) time.Duration {
	delay, _ := flags.GetInt("notifications-delay")
	if delay <= 0 {
		return 0
	}

	return time.Duration(delay) * time.Second
}

// GetSecretsFromFiles replaces flag values with file contents if they reference files.
// It processes a predefined list of secret-related flags, updating their values accordingly.
func GetSecretsFromFiles(rootCmd *cobra.Command) {
	secrets := []string{
		"notification-url",
		"api-token",
	}

	for _, secret := range secrets {
		flags := rootCmd.PersistentFlags()
		if flags.Lookup(secret) == nil {
			flags = rootCmd.Flags()
		}

		if flags.Lookup(secret) == nil {
			continue
		}

		if err := getSecretFromFile(flags, secret); err != nil {
			logrus.Fatalf("failed to get secret from flag %v: %s", secret, err)
		}
	}
}

// getSecretFromFile updates a flag’s value with file contents if it references a file.
// It handles both string and slice flags, returning an error if file operations fail.
func getSecretFromFile(flags *pflag.FlagSet, secret string) error {
	flag := flags.Lookup(secret)
	if flag == nil {
		return fmt.Errorf("%w: %q", errUndefinedFlag, secret)
	}

	if sliceValue, ok := flag.Value.(pflag.SliceValue); ok {
		oldValues := sliceValue.GetSlice()
		values := make([]string, 0, len(oldValues))

		for _, value := range oldValues {
			if value == "" || !isFilePath(value) {
				values = append(values, value)

				continue
			}

			file, err := os.Open(value)
			if err != nil {
				return fmt.Errorf("%w: %w", errOpenFileFailed, err)
			}

			scanner := bufio.NewScanner(file)
			for scanner.Scan() {
				line := scanner.Text()
				if line == "" {
					continue
				}

				values = append(values, line)
			}

			if err := file.Close(); err != nil {
				return fmt.Errorf("%w: %w", errCloseFileFailed, err)
			}
		}

		if err := sliceValue.Replace(values); err != nil {
			return fmt.Errorf("%w: %w", errReplaceSliceFailed, err)
		}

		return nil
	}

	value := flag.Value.String()
	if value != "" && isFilePath(value) {
		content, err := os.ReadFile(value)
		if err != nil {
			return fmt.Errorf("%w: %w", errReadFileFailed, err)
		}

		if err := flags.Set(secret, strings.TrimSpace(string(content))); err != nil {
			return fmt.Errorf("%w: %w", errSetFlagFailed, err)
		}
	}

	return nil
}

// isFilePath determines if a string likely represents a file path.
// It checks for file existence, avoiding false positives from URLs or invalid Windows paths.
func isFilePath(path string) bool {
	firstColon := strings.IndexRune(path, ':')
	if firstColon != 1 && firstColon != -1 {
		// If ':' exists but isn’t the second character, it’s likely not a file path (e.g., URLs).
		return false
	}

	_, err := os.Stat(path)

	return !errors.Is(err, os.ErrNotExist)
}

// ProcessFlagAliases maps the debug and trace switches onto the log level.
func ProcessFlagAliases(flags *pflag.FlagSet) {
	if flagIsEnabled(flags, "debug") {
		if err := flags.Set("log-level", "debug"); err != nil {
			logrus.Errorf("Failed to set log-level flag: %v", err)
		}
	}

	if flagIsEnabled(flags, "trace") {
		if err := flags.Set("log-level", "trace"); err != nil {
			logrus.Errorf("Failed to set log-level flag: %v", err)
		}
	}
}

// SetupLogging configures the global logger based on log-related flags.
// It sets the log format and level, returning an error for invalid configurations.
func SetupLogging(flags *pflag.FlagSet) error {
	logFormat, err := flags.GetString("log-format")
	if err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	noColor, err := flags.GetBool("no-color")
	if err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	if err := configureLogFormat(logFormat, noColor); err != nil {
		return err
	}

	rawLogLevel, err := flags.GetString("log-level")
	if err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	logLevel, err := logrus.ParseLevel(rawLogLevel)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidLogLevel, err)
	}

	logrus.SetLevel(logLevel)

	return nil
}

// configureLogFormat sets the logrus formatter based on the specified format and color preference.
// It returns an error if the format is invalid.
func configureLogFormat(logFormat string, noColor bool) error {
	switch strings.ToLower(logFormat) {
	case "auto":
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableColors:             noColor,
			EnvironmentOverrideColors: true,
		})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "logfmt":
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		})
	case "pretty":
		logrus.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !noColor,
			FullTimestamp: false,
		})
	default:
		return fmt.Errorf("%w: %s", errInvalidLogFormat, logFormat)
	}

	return nil
}

// flagIsEnabled checks if a boolean flag is set to true.
// It exits with a fatal error if the flag is not defined.
func flagIsEnabled(flags *pflag.FlagSet, name string) bool {
	value, err := flags.GetBool(name)
	if err != nil {
		logrus.Fatalf("The flag %q is not defined", name)
	}

	return value
}
