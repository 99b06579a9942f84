package dispatch

import (
	"context"
	"log/slog"
	"time"

	"markestedt/alpa/command"
	"markestedt/alpa/platform"
)

// DefaultInterval is the key-state sampling period. It bounds how long a
// chord must be held to be seen; it is not an exact timing guarantee.
const DefaultInterval = 10 * time.Millisecond

// NewRequests creates the single-slot channel between poller and coordinator.
// A second request blocks the poller until the first has been taken.
func NewRequests() chan command.GenerateSpec {
	return make(chan command.GenerateSpec, 1)
}

// Poller samples the keyboard on a fixed period and dispatches the most
// specific pressed command
type Poller struct {
	commands []command.Command
	keyboard platform.KeyboardState
	state    *State
	requests chan<- command.GenerateSpec
	interval time.Duration

	// last spec sent during the current generation, for debounce
	lastDispatched *command.GenerateSpec
}

// NewPoller creates a poller. interval <= 0 means DefaultInterval.
func NewPoller(commands []command.Command, keyboard platform.KeyboardState, state *State, requests chan<- command.GenerateSpec, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Poller{
		commands: commands,
		keyboard: keyboard,
		state:    state,
		requests: requests,
		interval: interval,
	}
}

// Run polls until ctx is done
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	slog.Info("Hotkey poller started", "commands", len(p.commands), "interval", p.interval)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.tick(ctx); err != nil {
				return nil
			}
		}
	}
}

// tick runs one sampling step. It only returns an error when ctx ends while
// blocked on a full request slot.
func (p *Poller) tick(ctx context.Context) error {
	pressed := p.keyboard.PressedKeys()

	// Re-arm the debounce once the previous generation is over. Busy also
	// covers a request still sitting in the slot, which the coordinator has
	// not marked as generating yet.
	if !p.state.Busy() {
		p.lastDispatched = nil
	}

	cmd, ok := command.Select(p.commands, pressed)
	if !ok {
		return nil
	}

	switch cmd.Action {
	case command.ActionGenerate:
		spec := cmd.Generate
		if p.lastDispatched != nil && *p.lastDispatched == spec {
			return nil
		}

		slog.Debug("Dispatching command", "name", cmd.Name, "keys", cmd.Keys.String())
		p.state.markDispatched()
		select {
		case p.requests <- spec:
		case <-ctx.Done():
			p.state.markDone()
			return ctx.Err()
		}
		p.lastDispatched = &spec

	case command.ActionCancel:
		if !p.state.CancelRequested() {
			slog.Info("Cancel requested", "name", cmd.Name)
		}
		p.state.RequestCancel()
	}

	return nil
}
