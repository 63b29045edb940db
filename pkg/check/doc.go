// Package check decides whether a single image has an update.
//
// Each image is ingested once into an Image, which fixes its comparison mode: images whose tag
// parses under their versioning scheme are compared by version, all others by digest. A version
// comparison that finds the local tag is still the newest falls back to a digest comparison, so
// re-pushed floating tags are detected.
//
// Usage example:
//
//	img, err := check.NewImage(local, rules)
//	if err != nil {
//	    return types.Unknown(local.Reference, types.Parts{}, err.Error())
//	}
//	result := check.NewChecker(registryClient, ignore).Check(ctx, img, token)
package check
