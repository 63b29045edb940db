// Package output renders check results for the terminal and as JSON.
//
// Key components:
//   - Printer: Writes one colored line per image, sorted by status.
//   - WriteJSON: Writes the full or simple report document.
//
// Usage example:
//
//	printer := output.NewPrinter(os.Stdout, output.Options{Width: 100})
//	printer.PrintResults(report.Images)
package output
