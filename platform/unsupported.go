//go:build !windows && !linux && !darwin

package platform

import (
	"fmt"
	"runtime"
)

// NewKeyboardState is not available on this platform
func NewKeyboardState() (KeyboardState, error) {
	return nil, fmt.Errorf("keyboard state is not supported on %s", runtime.GOOS)
}

// NewInjector is not available on this platform
func NewInjector() (Injector, error) {
	return nil, fmt.Errorf("keystroke injection is not supported on %s", runtime.GOOS)
}
