package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"

	"markestedt/alpa/command"
	"markestedt/alpa/engine"
	"markestedt/alpa/platform"
)

// DefaultSettleDelay is how long the coordinator waits after the copy
// keystroke before reading the clipboard
const DefaultSettleDelay = 50 * time.Millisecond

// PromptSurface asks the user for a single line of input. It returns "" when
// the user dismissed it.
type PromptSurface interface {
	Ask(ctx context.Context) (string, error)
}

// Coordinator runs one generation at a time
type Coordinator struct {
	requests  <-chan command.GenerateSpec
	state     *State
	engine    engine.Engine
	surface   PromptSurface
	clipboard platform.Clipboard
	injector  platform.Injector
	observer  Observer

	// GOOS selects the clipboard line-selection keystrokes
	GOOS string
	// SettleDelay is the pause between the copy keystroke and the clipboard read
	SettleDelay time.Duration
}

// NewCoordinator creates a coordinator. observer may be nil.
func NewCoordinator(requests <-chan command.GenerateSpec, state *State, eng engine.Engine, surface PromptSurface, clipboard platform.Clipboard, injector platform.Injector, observer Observer) *Coordinator {
	if observer == nil {
		observer = nopObserver{}
	}

	return &Coordinator{
		requests:    requests,
		state:       state,
		engine:      eng,
		surface:     surface,
		clipboard:   clipboard,
		injector:    injector,
		observer:    observer,
		GOOS:        runtime.GOOS,
		SettleDelay: DefaultSettleDelay,
	}
}

// Run handles requests until ctx is done. Failed attempts are logged and do
// not end the loop.
func (c *Coordinator) Run(ctx context.Context) error {
	slog.Info("Generation coordinator started", "engine", c.engine.Name())

	for {
		select {
		case <-ctx.Done():
			return nil
		case spec := <-c.requests:
			err := c.Handle(ctx, spec)
			c.state.markDone()
			if err != nil {
				slog.Error("Generation failed", "error", err)
			}
		}
	}
}

// Handle runs a single generation attempt
func (c *Coordinator) Handle(ctx context.Context, spec command.GenerateSpec) error {
	c.state.setGenerating(true)
	defer c.state.setGenerating(false)

	// A cancel pressed while idle has nothing to cancel
	c.state.clearCancel()

	gen := Generation{
		ID:      uuid.NewString(),
		Spec:    spec,
		Engine:  c.engine.Name(),
		Outcome: OutcomeRunning,
		Started: time.Now(),
	}
	c.observer.GenerationStarted(gen)

	finish := func(outcome Outcome, err error) error {
		gen.Outcome = outcome
		gen.Err = err
		gen.Finished = time.Now()
		c.observer.GenerationFinished(gen)
		return err
	}

	text, err := c.resolveInput(ctx, spec.Input)
	if err != nil {
		return finish(OutcomeFailed, err)
	}
	gen.Resolved = time.Now()

	if text == "" {
		slog.Debug("Empty prompt, nothing to generate", "id", gen.ID)
		return finish(OutcomeEmpty, nil)
	}

	gen.Prompt = BuildPrompt(spec.Mode, text)
	slog.Info("Generation started", "id", gen.ID, "engine", gen.Engine, "prompt_len", len(gen.Prompt))

	tr := NewTranslator(c.injector, spec.Newline, c.state)
	err = c.engine.Generate(ctx, gen.Prompt, tr.OnToken)

	gen.Output = tr.Output()
	gen.Chunks = tr.Chunks()

	if tr.Cancelled() {
		c.state.clearCancel()
	}

	switch {
	case err != nil:
		return finish(OutcomeFailed, fmt.Errorf("%w: %w", ErrEngine, err))
	case tr.Err() != nil:
		return finish(OutcomeFailed, tr.Err())
	case tr.Cancelled():
		slog.Info("Generation cancelled", "id", gen.ID, "chunks", gen.Chunks)
		return finish(OutcomeCancelled, nil)
	case tr.Stopped():
		slog.Info("Generation stopped at newline", "id", gen.ID, "chunks", gen.Chunks)
		return finish(OutcomeStopped, nil)
	}

	slog.Info("Generation completed", "id", gen.ID, "chunks", gen.Chunks, "duration", time.Since(gen.Resolved))
	return finish(OutcomeCompleted, nil)
}

// resolveInput obtains the prompt text for the input method
func (c *Coordinator) resolveInput(ctx context.Context, input command.InputMethod) (string, error) {
	switch input.Kind {
	case command.InputSingleLineUI:
		text, err := c.surface.Ask(ctx)
		if err != nil {
			if errors.Is(err, ErrPromptSurface) {
				return "", err
			}
			return "", fmt.Errorf("%w: %w", ErrPromptSurface, err)
		}
		return text, nil

	case command.InputClipboard:
		if input.Load == command.LoadLine {
			if err := c.copyCurrentLine(); err != nil {
				return "", err
			}
		}

		text, err := c.clipboard.ReadText()
		if err != nil {
			return "", fmt.Errorf("failed to read clipboard: %w", err)
		}
		return text, nil
	}

	return "", fmt.Errorf("unknown input method: %d", input.Kind)
}

func (c *Coordinator) copyCurrentLine() error {
	strokes, err := selectLineStrokes(c.GOOS)
	if err != nil {
		return err
	}

	for _, s := range strokes {
		if err := c.injector.Tap(s.key, s.mods...); err != nil {
			return fmt.Errorf("failed to select line: %w", err)
		}
	}

	if c.SettleDelay > 0 {
		time.Sleep(c.SettleDelay)
	}
	return nil
}
