package version

import "fmt"

// datePattern matches YYYY[.-]MM[.-]DD with an optional trailing build number.
const datePattern = `([0-9]{4})[.-]?([0-9]{2})[.-]?([0-9]{2})(?:[.-]?([0-9]+))?`

const (
	monthsPerYear = 12
	maxDayOfMonth = 31
)

// Date versions images by release date: the year is the major component,
// the month the minor component, and the day plus any build number the patch components.
type Date struct {
	ordering
	matcher *Matcher
}

// NewDate returns a Date strategy.
func NewDate() *Date {
	matcher, _ := NewMatcher(datePattern)

	return &Date{matcher: matcher}
}

// Kind returns KindDate.
func (d *Date) Kind() Kind {
	return KindDate
}

// Parse extracts a calendar date from the tag.
//
// Year, month and day are fixed-width fields, so "2024.01.15" and "2024.12.03" stay comparable.
func (d *Date) Parse(tag string) (Tag, error) {
	spans, ok := d.matcher.Best(tag)
	if !ok {
		return Tag{}, fmt.Errorf("%w: %q", ErrUnrecognizedTagFormat, tag)
	}

	parsed, err := newTag(KindDate, tag, spans)
	if err != nil {
		return Tag{}, fmt.Errorf("%w: %w", ErrUnrecognizedTagFormat, err)
	}

	for i := 0; i < 3 && i < len(spans); i++ {
		parsed.Components[i].Width = spans[i].end - spans[i].start
	}

	month, day := parsed.Components[1].Value, parsed.Components[2].Value
	if month < 1 || month > monthsPerYear || day < 1 || day > maxDayOfMonth {
		return Tag{}, fmt.Errorf("%w: %q is not a valid date", ErrUnrecognizedTagFormat, tag)
	}

	return parsed, nil
}
