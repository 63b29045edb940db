// Package types defines the core data model shared by Cup's packages.
// It provides the image reference parts, update statuses, check results, the federation report
// and the configuration schema, along with the interfaces implemented by image sources and notifiers.
//
// Key components:
//   - Parts: Registry, repository and tag derived from an image reference.
//   - Status: Ordered update status (major, minor, patch, available, up to date, unknown).
//   - CheckResult: Outcome of checking a single image, serialised into the federation report.
//   - Report: The JSON document served at /api/v3/json and consumed from peer instances.
//   - Config: The configuration file schema (version 3).
//   - ImageSource: Interface for providers of local images.
//
// Usage example:
//
//	result := types.CheckResult{Reference: "nginx:1.25.2", Status: types.StatusPatch}
//	hasUpdate := result.Status.HasUpdate() // *bool -> true
package types
