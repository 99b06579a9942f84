package dispatch

import "errors"

// Errors scoped to a single generation attempt. None of them stop the
// coordinator.
var (
	ErrUnsupportedPlatform = errors.New("clipboard line selection is not supported on this platform")
	ErrPromptSurface       = errors.New("prompt surface failed")
	ErrEngine              = errors.New("generation engine failed")
)
