package container

import "errors"

// Errors for engine operations.
var (
	// errCreateClientFailed indicates the engine client could not be created.
	errCreateClientFailed = errors.New("failed to create docker client")
	// errListImagesFailed indicates a failure to list images from the engine.
	errListImagesFailed = errors.New("failed to list images")
	// errListContainersFailed indicates a failure to list containers from the engine.
	errListContainersFailed = errors.New("failed to list containers")
	// errInspectImageFailed indicates a failure to inspect a requested image.
	errInspectImageFailed = errors.New("failed to inspect image")
)
