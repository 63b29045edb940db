package version

import "errors"

// Errors for version parsing and comparison.
var (
	// ErrUnrecognizedTagFormat indicates a tag that the selected scheme cannot parse.
	ErrUnrecognizedTagFormat = errors.New("unrecognized tag format")
	// ErrTagDoesNotExist indicates the remote candidate is not newer than, or not comparable to, the local tag.
	ErrTagDoesNotExist = errors.New("tag does not exist")
	// ErrIncomparable indicates two tags with different templates, kinds or component widths.
	ErrIncomparable = errors.New("versions are not comparable")
	// ErrInvalidPattern indicates an extended pattern that does not compile.
	ErrInvalidPattern = errors.New("invalid version pattern")
	// ErrNonUniformGroups indicates an extended pattern mixing named and anonymous capture groups.
	ErrNonUniformGroups = errors.New("pattern has both named and anonymous capture groups")
	// ErrNoGroups indicates an extended pattern without capture groups.
	ErrNoGroups = errors.New("pattern has no capture groups")
	// ErrNoMatch indicates a tag that does not match the extended pattern.
	ErrNoMatch = errors.New("tag did not match the pattern")
	// ErrGroupDidNotMatch indicates a named group without a match.
	ErrGroupDidNotMatch = errors.New("capture group did not match")
	// ErrOverlappingGroups indicates nested or overlapping capture groups in a match.
	ErrOverlappingGroups = errors.New("capture groups overlap")
	// ErrParseComponent indicates a component that is not a valid unsigned integer.
	ErrParseComponent = errors.New("version component is not a valid integer")
	// ErrUnknownScheme indicates an unsupported versioning scheme name.
	ErrUnknownScheme = errors.New("unknown versioning scheme")
)
