package dispatch

import (
	"context"
	"strings"
	"sync"

	"markestedt/alpa/engine"
	"markestedt/alpa/keys"
)

type fakeKeyboard struct {
	mu      sync.Mutex
	pressed keys.Set
}

func (k *fakeKeyboard) press(codes ...keys.Keycode) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pressed = keys.NewSet(codes...)
}

func (k *fakeKeyboard) PressedKeys() keys.Set {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.pressed == nil {
		return keys.NewSet()
	}
	return k.pressed.Clone()
}

// fakeInjector records keystrokes as "type:<text>" and "tap:<key>+<mods>"
type fakeInjector struct {
	mu      sync.Mutex
	events  []string
	typeErr error
	tapErr  error
}

func (f *fakeInjector) TypeText(text string) error {
	if f.typeErr != nil {
		return f.typeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "type:"+text)
	return nil
}

func (f *fakeInjector) Tap(key keys.Keycode, mods ...keys.Keycode) error {
	if f.tapErr != nil {
		return f.tapErr
	}
	parts := []string{string(key)}
	for _, m := range mods {
		parts = append(parts, string(m))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "tap:"+strings.Join(parts, "+"))
	return nil
}

func (f *fakeInjector) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

// fakeEngine streams fixed chunks and stops when the callback halts
type fakeEngine struct {
	chunks []string
	err    error
	// called before chunk i is delivered
	beforeChunk func(i int)

	mu      sync.Mutex
	prompts []string
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Generate(ctx context.Context, prompt string, onToken engine.TokenFunc) error {
	e.mu.Lock()
	e.prompts = append(e.prompts, prompt)
	e.mu.Unlock()

	for i, chunk := range e.chunks {
		if e.beforeChunk != nil {
			e.beforeChunk(i)
		}
		if onToken(chunk) == engine.Halt {
			break
		}
	}
	return e.err
}

func (e *fakeEngine) calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.prompts...)
}

type fakeSurface struct {
	text string
	err  error
}

func (s *fakeSurface) Ask(ctx context.Context) (string, error) {
	return s.text, s.err
}

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) ReadText() (string, error) {
	return c.text, c.err
}

type recordingObserver struct {
	mu       sync.Mutex
	started  []Generation
	finished []Generation
}

func (o *recordingObserver) GenerationStarted(g Generation) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, g)
}

func (o *recordingObserver) GenerationFinished(g Generation) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, g)
}

func (o *recordingObserver) finishedCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.finished)
}

func (o *recordingObserver) last() Generation {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.finished[len(o.finished)-1]
}
