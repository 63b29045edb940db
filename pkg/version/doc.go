// Package version implements Cup's version model.
// It parses image tags into comparable versions plus a reversible format template, orders them,
// and classifies the difference between a remote and a local version as a major, minor or patch update.
//
// Key components:
//   - Component: A numeric version component with its zero-padding width.
//   - Tag: A parsed tag (kind, template, components) that renders back to the original text.
//   - Strategy: Interface implemented by the Standard, Date, Extended and Digest versioning schemes.
//   - Matcher: Compiled pattern owned by a Standard strategy; no package-level regex state.
//
// Usage example:
//
//	strategy := version.NewStandard()
//	local, _ := strategy.Parse("v0.107.53") // template "v{}.{}.{}"
//	remote, _ := strategy.Parse("v0.108.0")
//	status, err := strategy.Classify(remote, local) // types.StatusMinor, nil
package version
