//go:build windows

package platform

import (
	"fmt"

	"golang.org/x/sys/windows"

	"markestedt/alpa/keys"
)

var (
	user32           = windows.NewLazySystemDLL("user32.dll")
	getAsyncKeyState = user32.NewProc("GetAsyncKeyState")
)

// vkCodes maps keycodes to Windows virtual key codes
var vkCodes = map[keys.Keycode]uint16{
	keys.LShift:       0xA0,
	keys.RShift:       0xA1,
	keys.LControl:     0xA2,
	keys.RControl:     0xA3,
	keys.LAlt:         0xA4,
	keys.RAlt:         0xA5,
	keys.LMeta:        0x5B,
	keys.RMeta:        0x5C,
	keys.Escape:       0x1B,
	keys.Enter:        0x0D,
	keys.Space:        0x20,
	keys.Backspace:    0x08,
	keys.Tab:          0x09,
	keys.Delete:       0x2E,
	keys.Left:         0x25,
	keys.Up:           0x26,
	keys.Right:        0x27,
	keys.Down:         0x28,
	keys.Minus:        0xBD,
	keys.Equal:        0xBB,
	keys.LeftBracket:  0xDB,
	keys.RightBracket: 0xDD,
	keys.BackSlash:    0xDC,
	keys.Semicolon:    0xBA,
	keys.Apostrophe:   0xDE,
	keys.Comma:        0xBC,
	keys.Dot:          0xBE,
	keys.Slash:        0xBF,
	keys.Grave:        0xC0,
}

func init() {
	for c := 'A'; c <= 'Z'; c++ {
		vkCodes[keys.Keycode(string(c))] = uint16(c)
	}
	for d := '0'; d <= '9'; d++ {
		vkCodes[keys.Keycode("Key"+string(d))] = uint16(d)
	}
	for i := 1; i <= 12; i++ {
		vkCodes[keys.Keycode(fmt.Sprintf("F%d", i))] = uint16(0x70 + i - 1)
	}
}

// WindowsKeyboard samples key state with GetAsyncKeyState
type WindowsKeyboard struct{}

// NewKeyboardState creates a new Windows keyboard state reader
func NewKeyboardState() (KeyboardState, error) {
	if err := getAsyncKeyState.Find(); err != nil {
		return nil, fmt.Errorf("GetAsyncKeyState unavailable: %w", err)
	}
	return &WindowsKeyboard{}, nil
}

// PressedKeys returns every known key whose high bit is set
func (k *WindowsKeyboard) PressedKeys() keys.Set {
	pressed := keys.NewSet()
	for code, vk := range vkCodes {
		if isKeyPressed(vk) {
			pressed.Add(code)
		}
	}
	return pressed
}

func isKeyPressed(vk uint16) bool {
	r, _, _ := getAsyncKeyState.Call(uintptr(vk))
	return r&0x8000 != 0
}
