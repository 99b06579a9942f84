package dispatch

import (
	"strings"

	"markestedt/alpa/command"
	"markestedt/alpa/keys"
)

// BuildPrompt turns the resolved input text into the prompt sent to the engine
func BuildPrompt(mode command.PromptMode, text string) string {
	if mode.Kind == command.ModePrompt {
		return strings.ReplaceAll(mode.Template, command.Placeholder, text)
	}
	return text
}

// keyStroke is one injected key tap
type keyStroke struct {
	key  keys.Keycode
	mods []keys.Keycode
}

// selectLineStrokes returns the keystrokes that select the current line and
// copy it to the clipboard. Only macOS has a sequence.
func selectLineStrokes(goos string) ([]keyStroke, error) {
	if goos != "darwin" {
		return nil, ErrUnsupportedPlatform
	}

	return []keyStroke{
		{key: keys.Left, mods: []keys.Keycode{keys.LMeta, keys.LShift}},
		{key: keys.C, mods: []keys.Keycode{keys.LMeta}},
		// Deselect
		{key: keys.Right},
	}, nil
}
