// Package filters provides filtering logic for Cup's image worklist.
// It selects images by reference and registry, and matches references against version rules.
package filters

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/cup/pkg/types"
)

// Reference match kinds.
const (
	MatchExact    = "exact"
	MatchPrefix   = "prefix"
	MatchSuffix   = "suffix"
	MatchContains = "contains"
	MatchRegex    = "regex"
)

// Errors for filter construction.
var (
	// errUnknownMatch indicates an unsupported match kind.
	errUnknownMatch = errors.New("unknown reference match kind")
	// errInvalidRegex indicates a regex rule that does not compile.
	errInvalidRegex = errors.New("invalid reference pattern")
)

// NoFilter allows all images through.
//
// Returns:
//   - bool: Always true.
func NoFilter(_ string, _ types.Parts) bool {
	return true
}

// FilterByExcludes drops images whose reference starts with any of the prefixes.
//
// Parameters:
//   - prefixes: Reference prefixes to exclude.
//   - baseFilter: Base filter to chain.
//
// Returns:
//   - types.Filter: Filter function combining the exclusion with the base filter.
func FilterByExcludes(prefixes []string, baseFilter types.Filter) types.Filter {
	if len(prefixes) == 0 {
		return baseFilter
	}

	return func(reference string, parts types.Parts) bool {
		for _, prefix := range prefixes {
			if strings.HasPrefix(reference, prefix) {
				logrus.WithFields(logrus.Fields{
					"image":  reference,
					"prefix": prefix,
				}).Debug("Excluded image by prefix")

				return false
			}
		}

		return baseFilter(reference, parts)
	}
}

// FilterByIgnoredRegistries drops images hosted on registries configured with "ignore".
//
// Parameters:
//   - registries: Per-registry options keyed by host.
//   - baseFilter: Base filter to chain.
//
// Returns:
//   - types.Filter: Filter function combining the registry check with the base filter.
func FilterByIgnoredRegistries(
	registries map[string]types.RegistryConfig,
	baseFilter types.Filter,
) types.Filter {
	ignored := make(map[string]struct{})

	for registry, options := range registries {
		if options.Ignore {
			ignored[registry] = struct{}{}
		}
	}

	if len(ignored) == 0 {
		return baseFilter
	}

	return func(reference string, parts types.Parts) bool {
		if _, ok := ignored[parts.Registry]; ok {
			logrus.WithFields(logrus.Fields{
				"image":    reference,
				"registry": parts.Registry,
			}).Debug("Skipping image from ignored registry")

			return false
		}

		return baseFilter(reference, parts)
	}
}

// BuildFilter combines the configured filters into one.
//
// Parameters:
//   - config: Cup configuration, may be nil.
//
// Returns:
//   - types.Filter: The combined filter.
//   - string: Human-readable description of the active filters.
func BuildFilter(config *types.Config) (types.Filter, string) {
	filter := types.Filter(NoFilter)
	if config == nil {
		return filter, "Checking all images"
	}

	var descriptions []string

	filter = FilterByIgnoredRegistries(config.Registries, filter)

	for registry, options := range config.Registries {
		if options.Ignore {
			descriptions = append(descriptions, "registry "+registry)
		}
	}

	slices.Sort(descriptions)

	filter = FilterByExcludes(config.Images.Exclude, filter)
	for _, prefix := range config.Images.Exclude {
		descriptions = append(descriptions, "images starting with "+prefix)
	}

	if len(descriptions) == 0 {
		return filter, "Checking all images"
	}

	return filter, "Checking all images except " + strings.Join(descriptions, ", ")
}

// ReferenceMatcher matches image references by exact value, prefix, suffix, substring or regex.
type ReferenceMatcher struct {
	kind  string
	value string
	re    *regexp.Regexp
}

// NewReferenceMatcher creates a matcher.
//
// Parameters:
//   - kind: One of the Match constants; empty selects MatchPrefix.
//   - value: The string or expression to match.
//
// Returns:
//   - *ReferenceMatcher: The matcher.
//   - error: Non-nil for unknown kinds or invalid expressions.
func NewReferenceMatcher(kind, value string) (*ReferenceMatcher, error) {
	kind = strings.ToLower(kind)

	switch kind {
	case "":
		kind = MatchPrefix
	case MatchExact, MatchPrefix, MatchSuffix, MatchContains:
	case MatchRegex:
		re, err := regexp.Compile(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", errInvalidRegex, value, err)
		}

		return &ReferenceMatcher{kind: kind, value: value, re: re}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownMatch, kind)
	}

	return &ReferenceMatcher{kind: kind, value: value}, nil
}

// Matches reports whether the reference matches.
func (m *ReferenceMatcher) Matches(reference string) bool {
	switch m.kind {
	case MatchExact:
		return reference == m.value
	case MatchSuffix:
		return strings.HasSuffix(reference, m.value)
	case MatchContains:
		return strings.Contains(reference, m.value)
	case MatchRegex:
		return m.re.MatchString(reference)
	default:
		return strings.HasPrefix(reference, m.value)
	}
}

// compiledRule pairs a version rule with its matcher.
type compiledRule struct {
	matcher *ReferenceMatcher
	rule    types.VersionRule
}

// VersionRules selects the version rule of an image.
type VersionRules struct {
	rules []compiledRule
}

// NewVersionRules compiles the configured version rules.
//
// Parameters:
//   - rules: Rules in priority order.
//
// Returns:
//   - *VersionRules: The compiled rules.
//   - error: Non-nil if any rule's matcher is invalid.
func NewVersionRules(rules []types.VersionRule) (*VersionRules, error) {
	compiled := make([]compiledRule, 0, len(rules))

	for _, rule := range rules {
		matcher, err := NewReferenceMatcher(rule.Match, rule.Reference)
		if err != nil {
			return nil, err
		}

		compiled = append(compiled, compiledRule{matcher: matcher, rule: rule})
	}

	return &VersionRules{rules: compiled}, nil
}

// Select returns the first rule matching the reference.
//
// Returns:
//   - types.VersionRule: The rule, zero-valued (standard scheme) when none matches.
//   - bool: Whether a rule matched.
func (v *VersionRules) Select(reference string) (types.VersionRule, bool) {
	if v == nil {
		return types.VersionRule{}, false
	}

	for _, compiled := range v.rules {
		if compiled.matcher.Matches(reference) {
			return compiled.rule, true
		}
	}

	return types.VersionRule{}, false
}
