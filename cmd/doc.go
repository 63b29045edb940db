// Package cmd contains the command-line interface of Cup.
// It provides the root command with the check and serve subcommands, wiring the Docker client,
// the registry client, federation and notifications into a refresh orchestrator.
//
// Key components:
//   - rootCmd: Root command holding the flags shared by every subcommand.
//   - check: One-shot refresh printing the results to the terminal or as JSON.
//   - serve: HTTP server with scheduled refreshes.
//
// Usage examples:
//   - Run the CLI from main.go:
//     cmd.Execute()
//   - Check two images and print raw JSON:
//     cup check -r nginx:1.25 redis:7
//
// The package uses Cobra for CLI parsing and logrus for logging.
package cmd
