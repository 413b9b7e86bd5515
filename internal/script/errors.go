package script

import "errors"

// Errors for script execution.
var (
	// ErrRuntimeClosed is returned when running on a closed runtime.
	ErrRuntimeClosed = errors.New("script runtime is closed")

	// ErrCallLimit is returned when a script makes too many document calls.
	ErrCallLimit = errors.New("script call limit exceeded")
)
