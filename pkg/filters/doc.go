// Package filters provides filtering logic for Cup's image worklist.
// It defines functions to drop images by reference prefix or registry, and matchers that
// select a versioning rule per image.
//
// Key components:
//   - Filter Functions: Select images (e.g., FilterByExcludes, FilterByIgnoredRegistries).
//   - BuildFilter: Combines filters into a single function.
//   - VersionRules: First-match-wins lookup of the versioning scheme.
//
// Usage example:
//
//	filter, desc := filters.BuildFilter(config)
//	logrus.Info(desc)
//	if filter(reference, parts) {
//	    // check the image
//	}
//
// The package uses logrus for logging filter decisions.
package filters
