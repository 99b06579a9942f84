//go:build linux || darwin

package platform

import (
	"log/slog"
	"sync"

	hook "github.com/robotn/gohook"

	"markestedt/alpa/keys"
)

// HookKeyboard folds global key events into a pressed-key set that the
// poller samples
type HookKeyboard struct {
	mu      sync.Mutex
	pressed keys.Set
	events  chan hook.Event
}

// NewKeyboardState starts the global hook and returns a state reader
func NewKeyboardState() (KeyboardState, error) {
	k := &HookKeyboard{
		pressed: keys.NewSet(),
		events:  hook.Start(),
	}

	go k.track()

	return k, nil
}

func (k *HookKeyboard) track() {
	for ev := range k.events {
		switch ev.Kind {
		case hook.KeyDown, hook.KeyHold:
			k.update(hook.RawcodetoKeychar(ev.Rawcode), true)
		case hook.KeyUp:
			k.update(hook.RawcodetoKeychar(ev.Rawcode), false)
		}
	}
	slog.Debug("Keyboard hook stopped")
}

func (k *HookKeyboard) update(name string, down bool) {
	code, ok := hookKeycode(name)
	if !ok {
		return
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if down {
		k.pressed.Add(code)
	} else {
		k.pressed.Remove(code)
	}
}

// PressedKeys returns a snapshot of the held keys
func (k *HookKeyboard) PressedKeys() keys.Set {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.pressed.Clone()
}

// Close stops the global hook
func (k *HookKeyboard) Close() error {
	hook.End()
	return nil
}
