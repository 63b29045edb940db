package types

import "context"

// LocalImage is an image known to the local runtime, or requested explicitly by reference.
type LocalImage struct {
	Reference string   // Reference as reported by the runtime (first repo tag) or given by the user.
	Digests   []string // Repo digests with any "name@" prefix kept; empty for reference-only images.
	UsedBy    []string // Names of containers using the image.
}

// ImageSource provides the worklist of images to check.
type ImageSource interface {
	// Images returns the locally available images plus the explicitly requested references.
	Images(ctx context.Context, references []string) ([]LocalImage, error)
}
