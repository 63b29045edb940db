package types

// Parts holds the components of an image reference as they are addressed on the registry API.
type Parts struct {
	Registry   string `json:"registry"`   // API host of the registry (e.g. "registry-1.docker.io").
	Repository string `json:"repository"` // Repository path (e.g. "library/nginx").
	Tag        string `json:"tag"`        // Tag, "latest" when the reference has none.
}
