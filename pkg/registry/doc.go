// Package registry provides the OCI distribution client used to check images for updates.
//
// Key components:
//   - auth: Challenge discovery and batched bearer-token exchange.
//   - digest: Manifest digest lookup via HEAD requests.
//   - tags: Paginated tag listing and best-candidate selection.
//   - helpers: Reference splitting and digest normalization.
//   - manifest: Distribution API URL construction.
//   - transport: Retrying HTTP client and the registry error taxonomy.
//
// Usage example:
//
//	client := registry.NewClient(transport.New(transport.DefaultOptions(meta.UserAgent)), config)
//	token, err := client.Authenticate(ctx, "ghcr.io", []string{"org/app"})
//	if err != nil {
//	    logrus.WithError(err).Warn("Failed to authenticate")
//	}
//	remote, err := client.Digest(ctx, parts, token)
//
// Credentials come from the registry's "authentication" setting or the docker CLI configuration.
package registry
