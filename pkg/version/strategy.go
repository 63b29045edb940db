package version

import (
	"fmt"
	"strings"

	"github.com/nicholas-fedor/cup/pkg/types"
)

// Strategy is a versioning scheme, selected once per image.
type Strategy interface {
	// Kind returns the scheme name.
	Kind() Kind
	// Parse parses a tag, returning an error wrapping ErrUnrecognizedTagFormat when it does not apply.
	Parse(tag string) (Tag, error)
	// Compare orders two tags produced by Parse.
	Compare(a, b Tag) (int, error)
	// Classify compares a remote tag against the local tag.
	Classify(remote, local Tag) (types.Status, error)
}

// ordering provides Compare and Classify for the numeric schemes.
type ordering struct{}

// Compare orders two tags.
func (ordering) Compare(a, b Tag) (int, error) {
	return a.Compare(b)
}

// Classify compares a remote tag against the local tag.
func (ordering) Classify(remote, local Tag) (types.Status, error) {
	return Classify(remote, local)
}

// FromRule builds the strategy named by a configuration rule.
//
// Parameters:
//   - rule: The version rule; an empty type selects the standard scheme.
//
// Returns:
//   - Strategy: The configured scheme.
//   - error: ErrUnknownScheme or an extended pattern error.
func FromRule(rule types.VersionRule) (Strategy, error) {
	switch Kind(strings.ToLower(rule.Type)) {
	case "", KindStandard:
		return NewStandard(), nil
	case KindDate:
		return NewDate(), nil
	case KindExtended:
		return NewExtended(rule.Pattern)
	case KindDigest:
		return Digest{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, rule.Type)
	}
}
