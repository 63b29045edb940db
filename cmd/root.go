package cmd

import (
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nicholas-fedor/cup/internal/flags"
	"github.com/nicholas-fedor/cup/internal/meta"
	"github.com/nicholas-fedor/cup/pkg/types"
)

// config is the configuration of the running command.
//
// It is loaded in preRun from the --config file, with flags and CUP_ environment variables applied
// on top of it.
var config *types.Config

// rootCmd is the root command; subcommands inherit its persistent flags.
var rootCmd = NewRootCommand()

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cup",
		Short: "Checks container images for updates",
		Long: "\nCup checks the images of a Docker host for newer versions in their registries." +
			"\nRun \"cup check\" once, or \"cup serve\" to refresh periodically and serve the results over HTTP.",
		Version:           meta.Version,
		PersistentPreRun:  preRun,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	}
}

// init registers the flags and subcommands.
func init() {
	flags.SetDefaults()
	flags.RegisterSystemFlags(rootCmd)
	flags.RegisterNotificationFlags(rootCmd)

	rootCmd.AddCommand(NewCheckCommand(), NewServeCommand())
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Fatal("Failed to execute command")
	}
}

// preRun sets up logging and loads the configuration before any subcommand runs.
func preRun(cmd *cobra.Command, _ []string) {
	flagSet := cmd.Flags()
	flags.ProcessFlagAliases(flagSet)

	if err := flags.SetupLogging(flagSet); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize logging")
	}

	flags.GetSecretsFromFiles(cmd)

	if noColor, _ := flagSet.GetBool("no-color"); noColor {
		color.NoColor = true
	}

	cfg, err := loadConfiguration(flagSet)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	config = cfg
}

// loadConfiguration reads the --config file and applies the flag overrides.
func loadConfiguration(flagSet *pflag.FlagSet) (*types.Config, error) {
	path, _ := flagSet.GetString("config")

	cfg, err := flags.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	flags.ApplyOverrides(flagSet, cfg)

	logrus.WithFields(logrus.Fields{
		"path":       path,
		"registries": len(cfg.Registries),
		"servers":    len(cfg.Servers),
		"agent":      cfg.Agent,
	}).Debug("Loaded configuration")

	if cfg.Agent && len(cfg.Servers) > 0 {
		logrus.Warnf("Agent mode ignores the %d configured servers", len(cfg.Servers))
	}

	return cfg, nil
}
