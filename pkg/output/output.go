package output

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"

	"github.com/nicholas-fedor/cup/pkg/session"
	"github.com/nicholas-fedor/cup/pkg/sorter"
	"github.com/nicholas-fedor/cup/pkg/types"
)

// DefaultWidth is used when the terminal width cannot be determined.
const DefaultWidth = 80

// Status icons, Nerd Font glyphs.
const (
	iconUpToDate = "\uf058 "
	iconUnknown  = "\uf059 "
	iconUpdate   = "\uf0aa "
)

// Options configures a Printer.
type Options struct {
	// Width is the line width; zero selects DefaultWidth.
	Width int
	// Icons prefixes every line with a status glyph.
	Icons bool
	// NoColor disables ANSI colors regardless of the terminal.
	NoColor bool
}

// Printer writes check results as aligned, colored lines.
type Printer struct {
	out     io.Writer
	opts    Options
	palette map[types.Status]*color.Color
}

// NewPrinter creates a printer writing to out.
func NewPrinter(out io.Writer, opts Options) *Printer {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}

	palette := map[types.Status]*color.Color{
		types.StatusMajor:     color.New(color.FgRed),
		types.StatusMinor:     color.New(color.FgYellow),
		types.StatusPatch:     color.New(color.FgHiBlue),
		types.StatusAvailable: color.New(color.FgHiBlue),
		types.StatusUpToDate:  color.New(color.FgGreen),
		types.StatusUnknown:   color.New(color.FgHiBlack),
	}

	if opts.NoColor {
		for _, c := range palette {
			c.DisableColor()
		}
	}

	return &Printer{out: out, opts: opts, palette: palette}
}

// PrintResults writes one line per result, most urgent first.
// The input slice is left untouched.
func (p *Printer) PrintResults(results []types.CheckResult) {
	sorted := slices.Clone(results)
	sorter.SortByStatus(sorted)

	for _, result := range sorted {
		p.printLine(result)
	}
}

// printLine writes the reference left-aligned and the status label right-aligned.
func (p *Printer) printLine(result types.CheckResult) {
	status := result.Status
	label := status.String()

	icon := ""
	if p.opts.Icons {
		icon = statusIcon(status)
	}

	used := len([]rune(icon)) + len([]rune(result.Reference)) + len(label)
	padding := max(p.opts.Width-used, 1)

	line := icon + result.Reference + strings.Repeat(" ", padding) + label

	c, ok := p.palette[status]
	if !ok {
		c = p.palette[types.StatusUnknown]
	}

	_, _ = c.Fprintln(p.out, line)
}

func statusIcon(status types.Status) string {
	switch status {
	case types.StatusUpToDate:
		return iconUpToDate
	case types.StatusUnknown:
		return iconUnknown
	default:
		return iconUpdate
	}
}

// WriteJSON writes the report as indented JSON.
//
// Parameters:
//   - out: Destination.
//   - report: The report to write.
//   - full: Whether to write the full federation document instead of the simple flag map.
//
// Returns:
//   - error: Non-nil if encoding or writing fails.
func WriteJSON(out io.Writer, report types.Report, full bool) error {
	var body any = session.Simple(report)
	if full {
		body = report
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(body); err != nil {
		return fmt.Errorf("failed to write json output: %w", err)
	}

	return nil
}
