package cmd

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nicholas-fedor/cup/internal/flags"
	"github.com/nicholas-fedor/cup/pkg/output"
	"github.com/nicholas-fedor/cup/pkg/types"
)

// NewCheckCommand creates the check subcommand.
//
// Without arguments every local image is checked, together with the extra images of the
// configuration; arguments restrict the check to the given references.
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [image...]",
		Short: "Check images for updates and print the results",
		Args:  cobra.ArbitraryArgs,
		RunE:  runCheck,
	}

	flags.RegisterCheckFlags(cmd)

	return cmd
}

// runCheck runs one refresh and prints its report.
func runCheck(cmd *cobra.Command, references []string) error {
	a, err := newApp(cmd.Flags(), config)
	if err != nil {
		return err
	}
	defer a.close()

	start := time.Now()

	report, _, err := a.refresh(cmd.Context(), references)
	if err != nil {
		return err
	}

	return printReport(cmd, report, time.Since(start))
}

// printReport writes the report as JSON with --raw, as aligned lines otherwise.
func printReport(cmd *cobra.Command, report types.Report, elapsed time.Duration) error {
	flagSet := cmd.Flags()
	out := cmd.OutOrStdout()

	if raw, _ := flagSet.GetBool("raw"); raw {
		full, _ := flagSet.GetBool("full")

		return output.WriteJSON(out, report, full)
	}

	icons, _ := flagSet.GetBool("icons")
	noColor, _ := flagSet.GetBool("no-color")

	output.NewPrinter(out, output.Options{
		Width:   terminalWidth(out),
		Icons:   icons,
		NoColor: noColor,
	}).PrintResults(report.Images)

	logrus.Infof("Checked %d images in %dms", len(report.Images), elapsed.Milliseconds())

	return nil
}

// terminalWidth returns the width of the terminal behind out, zero if out is not a terminal.
func terminalWidth(out io.Writer) int {
	file, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return 0
	}

	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil {
		logrus.WithError(err).Debug("Failed to read the terminal size")

		return 0
	}

	return width
}
