package version

import (
	"fmt"

	"github.com/nicholas-fedor/cup/pkg/types"
)

// Digest forces digest-only comparison; it never parses a tag.
type Digest struct{}

// Kind returns KindDigest.
func (Digest) Kind() Kind {
	return KindDigest
}

// Parse always fails.
func (Digest) Parse(tag string) (Tag, error) {
	return Tag{}, fmt.Errorf("%w: %q is compared by digest", ErrUnrecognizedTagFormat, tag)
}

// Compare always fails.
func (Digest) Compare(a, b Tag) (int, error) {
	return 0, fmt.Errorf("%w: %q and %q", ErrIncomparable, a.Text, b.Text)
}

// Classify always reports an unknown status.
func (Digest) Classify(_, _ Tag) (types.Status, error) {
	return types.StatusUnknown, ErrTagDoesNotExist
}
