// Package flags manages command-line flags, CUP_ environment variables and the configuration file.
//
// Every flag takes its default from the matching CUP_ variable, so either can be used. Flags and
// variables override the configuration file for the options both can express.
//
// Key components:
//   - RegisterSystemFlags: Adds logging, connection and checking flags.
//   - RegisterNotificationFlags: Adds notification flags.
//   - RegisterServeFlags / RegisterCheckFlags: Add command-specific flags.
//   - LoadConfig / ApplyOverrides: Read the configuration file and merge flag values into it.
//   - SetupLogging: Configures logrus from the log flags.
package flags
