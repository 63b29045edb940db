// Package meta holds build information set at link time.
package meta

var (
	// Version is the release version, set with -ldflags "-X github.com/nicholas-fedor/cup/internal/meta.Version=...".
	Version = "v0.0.0-dev"
	// Commit is the source revision of the build.
	Commit = "unknown"
	// UserAgent is sent with every registry and peer request.
	UserAgent = "cup/" + Version
)
