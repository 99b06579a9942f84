//go:build linux || darwin

package platform

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/micmonay/keybd_event"

	"markestedt/alpa/keys"
)

var keybdCodes = map[keys.Keycode]int{
	keys.Escape:       keybd_event.VK_ESC,
	keys.Enter:        keybd_event.VK_ENTER,
	keys.Space:        keybd_event.VK_SPACE,
	keys.Backspace:    keybd_event.VK_BACKSPACE,
	keys.Tab:          keybd_event.VK_TAB,
	keys.Delete:       keybd_event.VK_DELETE,
	keys.Left:         keybd_event.VK_LEFT,
	keys.Right:        keybd_event.VK_RIGHT,
	keys.Up:           keybd_event.VK_UP,
	keys.Down:         keybd_event.VK_DOWN,
	keys.Minus:        keybd_event.VK_MINUS,
	keys.Equal:        keybd_event.VK_EQUAL,
	keys.LeftBracket:  keybd_event.VK_LEFTBRACE,
	keys.RightBracket: keybd_event.VK_RIGHTBRACE,
	keys.BackSlash:    keybd_event.VK_BACKSLASH,
	keys.Semicolon:    keybd_event.VK_SEMICOLON,
	keys.Apostrophe:   keybd_event.VK_APOSTROPHE,
	keys.Comma:        keybd_event.VK_COMMA,
	keys.Dot:          keybd_event.VK_DOT,
	keys.Slash:        keybd_event.VK_SLASH,
	keys.Grave:        keybd_event.VK_GRAVE,

	"A": keybd_event.VK_A, "B": keybd_event.VK_B, "C": keybd_event.VK_C,
	"D": keybd_event.VK_D, "E": keybd_event.VK_E, "F": keybd_event.VK_F,
	"G": keybd_event.VK_G, "H": keybd_event.VK_H, "I": keybd_event.VK_I,
	"J": keybd_event.VK_J, "K": keybd_event.VK_K, "L": keybd_event.VK_L,
	"M": keybd_event.VK_M, "N": keybd_event.VK_N, "O": keybd_event.VK_O,
	"P": keybd_event.VK_P, "Q": keybd_event.VK_Q, "R": keybd_event.VK_R,
	"S": keybd_event.VK_S, "T": keybd_event.VK_T, "U": keybd_event.VK_U,
	"V": keybd_event.VK_V, "W": keybd_event.VK_W, "X": keybd_event.VK_X,
	"Y": keybd_event.VK_Y, "Z": keybd_event.VK_Z,

	"Key0": keybd_event.VK_0, "Key1": keybd_event.VK_1, "Key2": keybd_event.VK_2,
	"Key3": keybd_event.VK_3, "Key4": keybd_event.VK_4, "Key5": keybd_event.VK_5,
	"Key6": keybd_event.VK_6, "Key7": keybd_event.VK_7, "Key8": keybd_event.VK_8,
	"Key9": keybd_event.VK_9,

	"F1": keybd_event.VK_F1, "F2": keybd_event.VK_F2, "F3": keybd_event.VK_F3,
	"F4": keybd_event.VK_F4, "F5": keybd_event.VK_F5, "F6": keybd_event.VK_F6,
	"F7": keybd_event.VK_F7, "F8": keybd_event.VK_F8, "F9": keybd_event.VK_F9,
	"F10": keybd_event.VK_F10, "F11": keybd_event.VK_F11, "F12": keybd_event.VK_F12,
}

// KeybdInjector presses physical keys through keybd_event. Text is mapped
// through the US layout; runes without a key are skipped.
type KeybdInjector struct {
	mu sync.Mutex
	kb keybd_event.KeyBonding
}

// NewInjector creates a new keybd_event injector
func NewInjector() (Injector, error) {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return nil, fmt.Errorf("failed to create key bonding: %w", err)
	}

	// The uinput device needs a moment before its first event is seen
	if runtime.GOOS == "linux" {
		time.Sleep(2 * time.Second)
	}

	return &KeybdInjector{kb: kb}, nil
}

// TypeText types text one key at a time
func (j *KeybdInjector) TypeText(text string) error {
	for _, r := range text {
		stroke, ok := StrokeFor(r)
		if !ok {
			slog.Debug("No key for character, skipping", "char", string(r))
			continue
		}

		var mods []keys.Keycode
		if stroke.Shift {
			mods = []keys.Keycode{keys.LShift}
		}
		if err := j.Tap(stroke.Key, mods...); err != nil {
			return err
		}
	}
	return nil
}

// Tap presses key while holding mods
func (j *KeybdInjector) Tap(key keys.Keycode, mods ...keys.Keycode) error {
	vk, ok := keybdCodes[key]
	if !ok {
		return fmt.Errorf("no key code for %s", key)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	var shift, ctrl, alt, super bool
	for _, m := range mods {
		switch m {
		case keys.LShift, keys.RShift:
			shift = true
		case keys.LControl, keys.RControl:
			ctrl = true
		case keys.LAlt, keys.RAlt:
			alt = true
		case keys.LMeta, keys.RMeta:
			super = true
		default:
			return fmt.Errorf("unsupported modifier: %s", m)
		}
	}

	j.kb.SetKeys(vk)
	j.kb.HasSHIFT(shift)
	j.kb.HasCTRL(ctrl)
	j.kb.HasALT(alt)
	j.kb.HasSuper(super)

	if err := j.kb.Launching(); err != nil {
		return fmt.Errorf("failed to send key %s: %w", key, err)
	}
	return nil
}
