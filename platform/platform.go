package platform

import (
	"markestedt/alpa/keys"
)

// KeyboardState samples the set of keys currently held down
type KeyboardState interface {
	PressedKeys() keys.Set
}

// Injector simulates keystrokes into the focused application
type Injector interface {
	// TypeText types literal text
	TypeText(text string) error
	// Tap presses key while holding mods, releasing everything afterwards
	Tap(key keys.Keycode, mods ...keys.Keycode) error
}

// Clipboard provides read access to the system clipboard
type Clipboard interface {
	ReadText() (string, error)
}
