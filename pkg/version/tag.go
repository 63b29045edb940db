package version

import (
	"fmt"
	"strings"

	"github.com/nicholas-fedor/cup/pkg/types"
)

// Placeholder marks the position of a component in a format template.
const Placeholder = "{}"

// Kind names a versioning scheme.
type Kind string

const (
	// KindStandard is the dotted major[.minor[.patch]] scheme.
	KindStandard Kind = "standard"
	// KindDate is the year, month, day scheme.
	KindDate Kind = "date"
	// KindExtended is the user-defined regular expression scheme.
	KindExtended Kind = "extended"
	// KindDigest disables version comparison.
	KindDigest Kind = "digest"
)

// Tag is a parsed image tag.
//
// Rendering the components into the template reproduces Text exactly.
type Tag struct {
	Kind       Kind
	Text       string
	Template   string
	Components []Component
}

// span is a matched component range [start, end) in the tag text.
type span struct {
	start, end int
}

// newTag builds a Tag from the spans of its components, which must be sorted and disjoint.
func newTag(kind Kind, text string, spans []span) (Tag, error) {
	var template strings.Builder

	components := make([]Component, 0, len(spans))
	prev := 0

	for _, s := range spans {
		if s.start < prev {
			return Tag{}, fmt.Errorf("%w: %q", ErrOverlappingGroups, text)
		}

		component, err := ParseComponent(text[s.start:s.end])
		if err != nil {
			return Tag{}, err
		}

		template.WriteString(text[prev:s.start])
		template.WriteString(Placeholder)

		components = append(components, component)
		prev = s.end
	}

	template.WriteString(text[prev:])

	return Tag{
		Kind:       kind,
		Text:       text,
		Template:   template.String(),
		Components: components,
	}, nil
}

// Render substitutes the components into the template.
func (t Tag) Render() string {
	var out strings.Builder

	rest := t.Template

	for _, component := range t.Components {
		index := strings.Index(rest, Placeholder)
		if index < 0 {
			break
		}

		out.WriteString(rest[:index])
		out.WriteString(component.String())
		rest = rest[index+len(Placeholder):]
	}

	out.WriteString(rest)

	return out.String()
}

// Version renders the components alone, joined by dots (e.g. "1.25.3").
func (t Tag) Version() string {
	parts := make([]string, 0, len(t.Components))
	for _, component := range t.Components {
		parts = append(parts, component.String())
	}

	return strings.Join(parts, ".")
}

// Comparable reports whether two tags share kind, template and component widths.
func (t Tag) Comparable(other Tag) bool {
	if t.Kind != other.Kind || t.Template != other.Template ||
		len(t.Components) != len(other.Components) {
		return false
	}

	for i := range t.Components {
		if t.Components[i].Width != other.Components[i].Width {
			return false
		}
	}

	return true
}

// Compare orders two comparable tags component by component.
//
// Returns:
//   - int: -1, 0 or 1.
//   - error: ErrIncomparable if the tags cannot be ordered.
func (t Tag) Compare(other Tag) (int, error) {
	_, order, err := t.firstDifference(other)

	return order, err
}

// firstDifference returns the index of the first differing component and the order at that index.
func (t Tag) firstDifference(other Tag) (int, int, error) {
	if !t.Comparable(other) {
		return 0, 0, fmt.Errorf("%w: %q and %q", ErrIncomparable, t.Text, other.Text)
	}

	for i := range t.Components {
		order, ok := t.Components[i].Compare(other.Components[i])
		if !ok {
			return 0, 0, fmt.Errorf("%w: %q and %q", ErrIncomparable, t.Text, other.Text)
		}

		if order != 0 {
			return i, order, nil
		}
	}

	return len(t.Components), 0, nil
}

// Classify compares a remote tag against the local one.
//
// The first differing component decides the status: index 0 is a major update, index 1 a minor
// update and any later index a patch update. Equal tags are up to date.
//
// Parameters:
//   - remote: The best remote candidate.
//   - local: The tag of the local image.
//
// Returns:
//   - types.Status: The update status.
//   - error: ErrTagDoesNotExist when the remote tag is older or not comparable.
func Classify(remote, local Tag) (types.Status, error) {
	index, order, err := remote.firstDifference(local)
	if err != nil {
		return types.StatusUnknown, fmt.Errorf("%w: %w", ErrTagDoesNotExist, err)
	}

	switch {
	case order < 0:
		return types.StatusUnknown, ErrTagDoesNotExist
	case order == 0:
		return types.StatusUpToDate, nil
	case index == 0:
		return types.StatusMajor, nil
	case index == 1:
		return types.StatusMinor, nil
	default:
		return types.StatusPatch, nil
	}
}

// Latest returns the greatest tag among candidates comparable to base.
//
// Returns:
//   - Tag: The greatest candidate.
//   - bool: false if no candidate is comparable to base.
func Latest(base Tag, candidates []Tag) (Tag, bool) {
	var (
		best  Tag
		found bool
	)

	for _, candidate := range candidates {
		if !candidate.Comparable(base) {
			continue
		}

		if !found {
			best, found = candidate, true

			continue
		}

		if order, err := candidate.Compare(best); err == nil && order > 0 {
			best = candidate
		}
	}

	return best, found
}
