package version

import (
	"cmp"
	"fmt"
	"strconv"
)

// Component is a single numeric part of a version.
//
// Width is the textual length when the source text is zero-padded ("007" has width 3) and 0 otherwise.
// The literal "0" is not padded and has width 0.
type Component struct {
	Value uint64
	Width int
}

// ParseComponent parses the decimal text of a component.
func ParseComponent(text string) (Component, error) {
	value, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return Component{}, fmt.Errorf("%w: %q", ErrParseComponent, text)
	}

	width := 0
	if len(text) > 1 && text[0] == '0' {
		width = len(text)
	}

	return Component{Value: value, Width: width}, nil
}

// String renders the component, restoring its zero padding.
func (c Component) String() string {
	if c.Width > 0 {
		return fmt.Sprintf("%0*d", c.Width, c.Value)
	}

	return strconv.FormatUint(c.Value, 10)
}

// Compare orders two components.
//
// Returns:
//   - int: -1, 0 or 1 when the components are comparable.
//   - bool: false when the widths differ ("2" and "02" never compare).
func (c Component) Compare(other Component) (int, bool) {
	if c.Width != other.Width {
		return 0, false
	}

	return cmp.Compare(c.Value, other.Value), true
}
