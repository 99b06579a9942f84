package dispatch

import (
	"fmt"
	"strings"

	"markestedt/alpa/command"
	"markestedt/alpa/engine"
	"markestedt/alpa/keys"
	"markestedt/alpa/platform"
)

// Translator turns streamed text into keystrokes for one generation.
//
// Every newline in the stream is a line boundary. The first line is typed as
// is; each later line gets the newline behavior applied before its text.
// Enter and ShiftEnter boundaries wait for the next text so a trailing
// newline at the end of the stream types nothing. Stop halts at the boundary.
type Translator struct {
	injector platform.Injector
	newline  command.NewlineBehavior
	state    *State

	pending   int
	cancelled bool
	stopped   bool
	err       error

	chunks int
	output strings.Builder
}

// NewTranslator creates a translator for a single generation
func NewTranslator(injector platform.Injector, newline command.NewlineBehavior, state *State) *Translator {
	return &Translator{
		injector: injector,
		newline:  newline,
		state:    state,
	}
}

// OnToken handles one streamed chunk. It is the engine callback.
func (t *Translator) OnToken(text string) engine.Feedback {
	if t.cancelled || t.stopped || t.err != nil {
		return engine.Halt
	}
	if t.state.CancelRequested() {
		t.cancelled = true
		return engine.Halt
	}

	t.chunks++
	// A carriage return is never typed. Dropping it alone also covers a
	// "\r\n" pair split across two chunks.
	text = strings.ReplaceAll(text, "\r", "")

	for {
		i := strings.IndexByte(text, '\n')
		line := text
		if i >= 0 {
			line = text[:i]
		}

		if line != "" {
			if !t.applyPending() {
				return engine.Halt
			}
			if err := t.injector.TypeText(line); err != nil {
				t.err = fmt.Errorf("failed to type text: %w", err)
				return engine.Halt
			}
			t.output.WriteString(line)
		}

		if i < 0 {
			return engine.Continue
		}

		if t.newline == command.NewlineStop {
			t.stopped = true
			return engine.Halt
		}
		t.pending++
		text = text[i+1:]
	}
}

// applyPending performs the deferred newline keystrokes
func (t *Translator) applyPending() bool {
	for ; t.pending > 0; t.pending-- {
		var err error
		switch t.newline {
		case command.NewlineEnter:
			err = t.injector.Tap(keys.Enter)
		case command.NewlineShiftEnter:
			err = t.injector.Tap(keys.Enter, keys.LShift)
		}
		if err != nil {
			t.err = fmt.Errorf("failed to send newline: %w", err)
			return false
		}
		t.output.WriteByte('\n')
	}
	return true
}

// Cancelled reports whether the generation halted on a cancel request
func (t *Translator) Cancelled() bool {
	return t.cancelled
}

// Stopped reports whether a Stop newline ended the generation
func (t *Translator) Stopped() bool {
	return t.stopped
}

// Err returns the injection error that halted the generation, if any
func (t *Translator) Err() error {
	return t.err
}

// Chunks returns the number of chunks processed
func (t *Translator) Chunks() int {
	return t.chunks
}

// Output returns the text typed so far, with applied newlines as "\n"
func (t *Translator) Output() string {
	return t.output.String()
}
