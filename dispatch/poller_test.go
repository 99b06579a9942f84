package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markestedt/alpa/command"
	"markestedt/alpa/keys"
)

var (
	enterSpec = command.GenerateSpec{Newline: command.NewlineEnter}
	stopSpec  = command.GenerateSpec{Newline: command.NewlineStop}
)

func mustCommand(t *testing.T, name string, action command.ActionKind, spec command.GenerateSpec, chord ...keys.Keycode) command.Command {
	t.Helper()
	cmd, err := command.New(name, keys.NewSet(chord...), action, spec)
	require.NoError(t, err)
	return cmd
}

func newTestPoller(t *testing.T, cmds ...command.Command) (*Poller, *fakeKeyboard, *State, chan command.GenerateSpec) {
	t.Helper()
	kb := &fakeKeyboard{}
	state := NewState()
	requests := NewRequests()
	return NewPoller(cmds, kb, state, requests, 0), kb, state, requests
}

func receive(t *testing.T, requests chan command.GenerateSpec) command.GenerateSpec {
	t.Helper()
	select {
	case spec := <-requests:
		return spec
	default:
		t.Fatal("expected a request in the slot")
		return command.GenerateSpec{}
	}
}

func assertEmpty(t *testing.T, requests chan command.GenerateSpec) {
	t.Helper()
	assert.Len(t, requests, 0)
}

func TestPollerDefaultInterval(t *testing.T) {
	p, _, _, _ := newTestPoller(t)
	assert.Equal(t, DefaultInterval, p.interval)
}

func TestPollerNoMatch(t *testing.T) {
	p, kb, _, requests := newTestPoller(t,
		mustCommand(t, "gen", command.ActionGenerate, enterSpec, keys.LAlt, keys.Backspace))
	ctx := context.Background()

	kb.press(keys.LAlt)
	require.NoError(t, p.tick(ctx))
	assertEmpty(t, requests)
}

func TestPollerDebounceWhileHeld(t *testing.T) {
	p, kb, state, requests := newTestPoller(t,
		mustCommand(t, "gen", command.ActionGenerate, enterSpec, keys.LAlt, keys.Backspace))
	ctx := context.Background()

	kb.press(keys.LAlt, keys.Backspace)
	require.NoError(t, p.tick(ctx))
	assert.Equal(t, enterSpec, receive(t, requests))

	// Taken from the slot but not started yet
	require.NoError(t, p.tick(ctx))
	assertEmpty(t, requests)

	state.setGenerating(true)
	for range 20 {
		require.NoError(t, p.tick(ctx))
	}
	assertEmpty(t, requests)
}

func TestPollerRearmsAfterGeneration(t *testing.T) {
	p, kb, state, requests := newTestPoller(t,
		mustCommand(t, "gen", command.ActionGenerate, enterSpec, keys.LAlt, keys.Backspace))
	ctx := context.Background()

	kb.press(keys.LAlt, keys.Backspace)
	require.NoError(t, p.tick(ctx))
	receive(t, requests)
	state.setGenerating(true)
	require.NoError(t, p.tick(ctx))

	// Generation finishes
	state.setGenerating(false)
	state.markDone()

	kb.press()
	require.NoError(t, p.tick(ctx))
	assertEmpty(t, requests)

	kb.press(keys.LAlt, keys.Backspace)
	require.NoError(t, p.tick(ctx))
	assert.Equal(t, enterSpec, receive(t, requests))
}

func TestPollerDifferentSpecWhileGenerating(t *testing.T) {
	p, kb, state, requests := newTestPoller(t,
		mustCommand(t, "enter", command.ActionGenerate, enterSpec, keys.LAlt, keys.Backspace),
		mustCommand(t, "stop", command.ActionGenerate, stopSpec, keys.LAlt, keys.Enter))
	ctx := context.Background()

	kb.press(keys.LAlt, keys.Backspace)
	require.NoError(t, p.tick(ctx))
	receive(t, requests)
	state.setGenerating(true)

	kb.press(keys.LAlt, keys.Enter)
	require.NoError(t, p.tick(ctx))
	assert.Equal(t, stopSpec, receive(t, requests))
}

func TestPollerSpecificity(t *testing.T) {
	p, kb, _, requests := newTestPoller(t,
		mustCommand(t, "broad", command.ActionGenerate, enterSpec, keys.LAlt, keys.Backspace),
		mustCommand(t, "narrow", command.ActionGenerate, stopSpec, keys.LAlt, keys.LShift, keys.Backspace))

	kb.press(keys.LAlt, keys.LShift, keys.Backspace)
	require.NoError(t, p.tick(context.Background()))
	assert.Equal(t, stopSpec, receive(t, requests))
}

func TestPollerCancel(t *testing.T) {
	p, kb, state, requests := newTestPoller(t,
		mustCommand(t, "gen", command.ActionGenerate, enterSpec, keys.LAlt, keys.Backspace),
		mustCommand(t, "cancel", command.ActionCancel, command.GenerateSpec{}, keys.LAlt, keys.Escape))
	ctx := context.Background()

	kb.press(keys.LAlt, keys.Escape)
	require.NoError(t, p.tick(ctx))
	require.NoError(t, p.tick(ctx))

	assert.True(t, state.CancelRequested())
	assertEmpty(t, requests)
}

func TestPollerBlockedSendEndsWithContext(t *testing.T) {
	p, kb, state, requests := newTestPoller(t,
		mustCommand(t, "enter", command.ActionGenerate, enterSpec, keys.LAlt, keys.Backspace),
		mustCommand(t, "stop", command.ActionGenerate, stopSpec, keys.LAlt, keys.Enter))

	kb.press(keys.LAlt, keys.Backspace)
	require.NoError(t, p.tick(context.Background()))
	require.Len(t, requests, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	kb.press(keys.LAlt, keys.Enter)
	assert.ErrorIs(t, p.tick(ctx), context.Canceled)

	// Only the request still in the slot counts as pending
	receive(t, requests)
	state.markDone()
	assert.False(t, state.Busy())
}

func TestPollerRun(t *testing.T) {
	kb := &fakeKeyboard{}
	state := NewState()
	requests := NewRequests()
	p := NewPoller([]command.Command{
		mustCommand(t, "gen", command.ActionGenerate, enterSpec, keys.LAlt, keys.Backspace),
	}, kb, state, requests, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	kb.press(keys.LAlt, keys.Backspace)
	select {
	case spec := <-requests:
		assert.Equal(t, enterSpec, spec)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not dispatch")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}
}

// runLoops runs a poller and a coordinator over the same state until the
// returned stop func is called
func runLoops(t *testing.T, f *coordinatorFixture, kb *fakeKeyboard) (stop func()) {
	t.Helper()
	p := NewPoller([]command.Command{
		mustCommand(t, "gen", command.ActionGenerate, popupSpec, keys.LAlt, keys.Backspace),
	}, kb, f.state, f.requests, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, p.Run(ctx))
	}()
	go func() {
		defer wg.Done()
		assert.NoError(t, f.coord.Run(ctx))
	}()

	return func() {
		cancel()
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("poller and coordinator did not stop")
		}
	}
}

func TestPollerAndCoordinatorDispatchOncePerHold(t *testing.T) {
	f := newFixture("ok")
	f.surface.text = "x"
	release := make(chan struct{})
	f.engine.beforeChunk = func(int) { <-release }
	kb := &fakeKeyboard{}

	stop := runLoops(t, f, kb)
	defer stop()

	kb.press(keys.LAlt, keys.Backspace)
	require.Eventually(t, func() bool { return len(f.engine.calls()) == 1 }, 2*time.Second, time.Millisecond)

	// Held for many ticks while the generation streams
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, f.engine.calls(), 1)
	assert.Len(t, f.requests, 0)

	// Still held once the generation completes, so it fires again
	close(release)
	require.Eventually(t, func() bool { return len(f.engine.calls()) >= 2 }, 2*time.Second, time.Millisecond)

	kb.press()
	require.Eventually(t, func() bool { return !f.state.Busy() }, 2*time.Second, time.Millisecond)
	settled := len(f.engine.calls())
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, f.engine.calls(), settled, "nothing dispatched after release")

	kb.press(keys.LAlt, keys.Backspace)
	require.Eventually(t, func() bool { return len(f.engine.calls()) > settled }, 2*time.Second, time.Millisecond)
	kb.press()
}

func TestPollerAndCoordinatorRearmAfterEmptyPrompt(t *testing.T) {
	f := newFixture("never")
	kb := &fakeKeyboard{}

	stop := runLoops(t, f, kb)
	defer stop()

	kb.press(keys.LAlt, keys.Backspace)
	require.Eventually(t, func() bool { return f.observer.finishedCount() >= 1 }, 2*time.Second, time.Millisecond)
	kb.press()
	assert.Equal(t, OutcomeEmpty, f.observer.last().Outcome)
	require.Eventually(t, func() bool { return !f.state.Busy() }, 2*time.Second, time.Millisecond)

	first := f.observer.finishedCount()
	kb.press(keys.LAlt, keys.Backspace)
	require.Eventually(t, func() bool { return f.observer.finishedCount() > first }, 2*time.Second, time.Millisecond)
	kb.press()

	assert.Empty(t, f.engine.calls())
	assert.Empty(t, f.injector.recorded())
}
