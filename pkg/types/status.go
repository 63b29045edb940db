package types

// Status describes the update state of a checked image.
//
// Values are declared in precedence order, so a lower value sorts first.
type Status int

const (
	// StatusMajor indicates a newer tag with a greater major component.
	StatusMajor Status = iota
	// StatusMinor indicates a newer tag with a greater minor component.
	StatusMinor
	// StatusPatch indicates a newer tag with a greater patch component.
	StatusPatch
	// StatusAvailable indicates the remote digest differs from every local digest.
	StatusAvailable
	// StatusUpToDate indicates no newer version or digest exists.
	StatusUpToDate
	// StatusUnknown indicates the check could not be completed; the reason is kept in the result error.
	StatusUnknown
)

// String returns the human-readable label of the status.
func (s Status) String() string {
	switch s {
	case StatusMajor:
		return "Major update"
	case StatusMinor:
		return "Minor update"
	case StatusPatch:
		return "Patch update"
	case StatusAvailable:
		return "Update available"
	case StatusUpToDate:
		return "Up to date"
	default:
		return "Unknown"
	}
}

// HasUpdate converts the status to its tri-state JSON form.
//
// Returns:
//   - *bool: nil for StatusUnknown, false for StatusUpToDate, true otherwise.
func (s Status) HasUpdate() *bool {
	var value bool

	switch s {
	case StatusUnknown:
		return nil
	case StatusUpToDate:
		value = false
	default:
		value = true
	}

	return &value
}

// UpdateType returns the version bump name ("major", "minor", "patch") or an empty string.
func (s Status) UpdateType() string {
	switch s {
	case StatusMajor:
		return "major"
	case StatusMinor:
		return "minor"
	case StatusPatch:
		return "patch"
	default:
		return ""
	}
}

// IsVersionUpdate reports whether the status is a major, minor or patch update.
func (s Status) IsVersionUpdate() bool {
	return s == StatusMajor || s == StatusMinor || s == StatusPatch
}
