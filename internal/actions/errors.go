package actions

import "errors"

// Errors for refresh operations.
var (
	// errListImagesFailed indicates the image source could not provide the worklist.
	errListImagesFailed = errors.New("failed to list images")
	// errInvalidRules indicates version rules that do not compile.
	errInvalidRules = errors.New("invalid version rules")
)
