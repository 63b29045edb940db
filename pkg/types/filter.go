package types

// Filter decides whether an image reference belongs in the worklist.
type Filter func(reference string, parts Parts) bool
