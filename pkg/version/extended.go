package version

import (
	"fmt"
	"regexp"
)

// Extended parses tags with a user-supplied regular expression.
//
// Every capture group is a component, in declaration order. Groups must be either all named or all
// anonymous. A named group that does not participate in the match is an error; an anonymous one is skipped.
type Extended struct {
	ordering
	pattern *regexp.Regexp
	named   bool
}

// NewExtended validates and compiles an extended pattern.
//
// Parameters:
//   - pattern: Regular expression with one capture group per component.
//
// Returns:
//   - *Extended: The strategy.
//   - error: ErrInvalidPattern, ErrNoGroups or ErrNonUniformGroups.
func NewExtended(pattern string) (*Extended, error) {
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}

	names := compiled.SubexpNames()[1:]
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoGroups, pattern)
	}

	named := names[0] != ""
	for _, name := range names[1:] {
		if (name != "") != named {
			return nil, fmt.Errorf("%w: %q", ErrNonUniformGroups, pattern)
		}
	}

	return &Extended{pattern: compiled, named: named}, nil
}

// Kind returns KindExtended.
func (e *Extended) Kind() Kind {
	return KindExtended
}

// Parse matches the tag against the pattern.
func (e *Extended) Parse(tag string) (Tag, error) {
	match := e.pattern.FindStringSubmatchIndex(tag)
	if match == nil {
		return Tag{}, fmt.Errorf("%w: %w: %q", ErrUnrecognizedTagFormat, ErrNoMatch, tag)
	}

	names := e.pattern.SubexpNames()
	spans := make([]span, 0, len(names)-1)

	for group := 1; group < len(names); group++ {
		start, end := match[group*2], match[group*2+1]
		if start < 0 {
			if e.named {
				return Tag{}, fmt.Errorf(
					"%w: %w: %q in %q",
					ErrUnrecognizedTagFormat,
					ErrGroupDidNotMatch,
					names[group],
					tag,
				)
			}

			continue
		}

		spans = append(spans, span{start: start, end: end})
	}

	parsed, err := newTag(KindExtended, tag, spans)
	if err != nil {
		return Tag{}, fmt.Errorf("%w: %w", ErrUnrecognizedTagFormat, err)
	}

	return parsed, nil
}
