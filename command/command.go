package command

import (
	"fmt"
	"strings"

	"markestedt/alpa/keys"
)

// InputKind selects where the prompt text comes from
type InputKind int

const (
	InputSingleLineUI InputKind = iota
	InputClipboard
)

func (k InputKind) String() string {
	switch k {
	case InputSingleLineUI:
		return "single-line-ui"
	case InputClipboard:
		return "clipboard"
	default:
		return fmt.Sprintf("InputKind(%d)", int(k))
	}
}

// ClipboardLoad is an optional action performed before the clipboard is read
type ClipboardLoad int

const (
	LoadNone ClipboardLoad = iota
	LoadLine
)

func (l ClipboardLoad) String() string {
	if l == LoadLine {
		return "line"
	}
	return ""
}

// InputMethod describes how the prompt is obtained
type InputMethod struct {
	Kind InputKind
	Load ClipboardLoad // only meaningful for InputClipboard
}

// ModeKind selects how the resolved text becomes the final prompt
type ModeKind int

const (
	ModeAutocomplete ModeKind = iota
	ModePrompt
)

func (k ModeKind) String() string {
	switch k {
	case ModeAutocomplete:
		return "autocomplete"
	case ModePrompt:
		return "prompt"
	default:
		return fmt.Sprintf("ModeKind(%d)", int(k))
	}
}

// Placeholder is replaced by the resolved text in prompt templates
const Placeholder = "{{PROMPT}}"

// PromptMode describes how the final prompt is built
type PromptMode struct {
	Kind     ModeKind
	Template string // only meaningful for ModePrompt
}

// NewlineBehavior is applied at every line boundary of the generated text
type NewlineBehavior int

const (
	NewlineStop NewlineBehavior = iota
	NewlineEnter
	NewlineShiftEnter
)

func (n NewlineBehavior) String() string {
	switch n {
	case NewlineStop:
		return "stop"
	case NewlineEnter:
		return "enter"
	case NewlineShiftEnter:
		return "shift-enter"
	default:
		return fmt.Sprintf("NewlineBehavior(%d)", int(n))
	}
}

// ParseNewline parses a newline behavior name
func ParseNewline(s string) (NewlineBehavior, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stop":
		return NewlineStop, nil
	case "enter":
		return NewlineEnter, nil
	case "shift-enter", "shift_enter", "shiftenter":
		return NewlineShiftEnter, nil
	default:
		return 0, fmt.Errorf("unknown newline behavior: %s", s)
	}
}

// GenerateSpec is everything the coordinator needs to run one generation.
// All fields are comparable, so == is full structural equality.
type GenerateSpec struct {
	Input   InputMethod
	Mode    PromptMode
	Newline NewlineBehavior
}

// ActionKind is what a command does when its chord is pressed
type ActionKind int

const (
	ActionGenerate ActionKind = iota
	ActionCancel
)

func (a ActionKind) String() string {
	switch a {
	case ActionGenerate:
		return "generate"
	case ActionCancel:
		return "cancel"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(a))
	}
}

// Command binds a key chord to an action
type Command struct {
	Name     string
	Keys     keys.Set
	Action   ActionKind
	Generate GenerateSpec // only meaningful for ActionGenerate
}

// New creates a command, rejecting an empty chord
func New(name string, chord keys.Set, action ActionKind, spec GenerateSpec) (Command, error) {
	if len(chord) == 0 {
		return Command{}, fmt.Errorf("command %q has no keys", name)
	}
	if action == ActionGenerate && spec.Mode.Kind == ModePrompt && !strings.Contains(spec.Mode.Template, Placeholder) {
		return Command{}, fmt.Errorf("command %q: prompt template is missing %s", name, Placeholder)
	}

	return Command{
		Name:     name,
		Keys:     chord.Clone(),
		Action:   action,
		Generate: spec,
	}, nil
}

// IsPressed reports whether every key of the chord is held. Extra keys
// don't disqualify a match.
func (c Command) IsPressed(pressed keys.Set) bool {
	return pressed.IsSuperset(c.Keys)
}

// Select returns the most specific pressed command: the one with the most
// keys, with ties going to the earliest configured.
func Select(commands []Command, pressed keys.Set) (Command, bool) {
	best := -1
	for i, cmd := range commands {
		if !cmd.IsPressed(pressed) {
			continue
		}
		if best == -1 || len(cmd.Keys) > len(commands[best].Keys) {
			best = i
		}
	}

	if best == -1 {
		return Command{}, false
	}
	return commands[best], true
}
