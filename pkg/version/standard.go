package version

import (
	"fmt"
	"regexp"
)

// standardPattern matches major[.minor[.patch]].
const standardPattern = `([0-9]+)(?:\.([0-9]+))?(?:\.([0-9]+))?`

// Matcher finds the most specific version-like match in a tag.
type Matcher struct {
	pattern *regexp.Regexp
}

// NewMatcher compiles a matcher for the given pattern.
func NewMatcher(pattern string) (*Matcher, error) {
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}

	return &Matcher{pattern: compiled}, nil
}

// Best returns the component spans of the match with the most captured groups.
// On a tie the first match wins.
func (m *Matcher) Best(text string) ([]span, bool) {
	var best []span

	for _, match := range m.pattern.FindAllStringSubmatchIndex(text, -1) {
		var spans []span

		for group := 1; group*2+1 < len(match); group++ {
			start, end := match[group*2], match[group*2+1]
			if start < 0 {
				continue
			}

			spans = append(spans, span{start: start, end: end})
		}

		if len(spans) > len(best) {
			best = spans
		}
	}

	return best, len(best) > 0
}

// Standard is the default scheme: one to three dot-separated numbers anywhere in the tag.
type Standard struct {
	ordering
	matcher *Matcher
}

// NewStandard returns a Standard strategy with its own compiled matcher.
func NewStandard() *Standard {
	matcher, _ := NewMatcher(standardPattern)

	return &Standard{matcher: matcher}
}

// Kind returns KindStandard.
func (s *Standard) Kind() Kind {
	return KindStandard
}

// Parse extracts the most specific version in the tag.
//
// "v0.107.53" parses into components 0, 107, 53 and template "v{}.{}.{}".
func (s *Standard) Parse(tag string) (Tag, error) {
	spans, ok := s.matcher.Best(tag)
	if !ok {
		return Tag{}, fmt.Errorf("%w: %q", ErrUnrecognizedTagFormat, tag)
	}

	parsed, err := newTag(KindStandard, tag, spans)
	if err != nil {
		return Tag{}, fmt.Errorf("%w: %w", ErrUnrecognizedTagFormat, err)
	}

	return parsed, nil
}
