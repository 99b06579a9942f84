package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"markestedt/alpa/command"
	"markestedt/alpa/config"
	"markestedt/alpa/dispatch"
	"markestedt/alpa/engine"
	"markestedt/alpa/platform"
	"markestedt/alpa/popup"
	"markestedt/alpa/storage"
	"markestedt/alpa/systray"
	"markestedt/alpa/web"
)

// Agent wires the hotkey poller, the generation coordinator and the
// optional history, dashboard and tray around them
type Agent struct {
	cfg       *config.Config
	commands  []command.Command
	state     *dispatch.State
	keyboard  platform.KeyboardState
	injector  platform.Injector
	clipboard platform.Clipboard
	engine    engine.Engine
	surface   dispatch.PromptSurface

	db   *storage.DB             // nil when history is disabled
	web  *web.Server             // nil when the dashboard is disabled
	tray *systray.SystrayManager // nil when the tray is disabled
}

// NewAgent creates a new agent instance
func NewAgent(cfg *config.Config) (*Agent, error) {
	commands, err := cfg.ParseCommands()
	if err != nil {
		return nil, fmt.Errorf("failed to parse commands: %w", err)
	}

	eng, err := engine.NewEngine(cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	surface, err := popup.NewClient(cfg.Window, cfg.Style)
	if err != nil {
		return nil, fmt.Errorf("failed to create prompt popup: %w", err)
	}

	keyboard, err := platform.NewKeyboardState()
	if err != nil {
		return nil, fmt.Errorf("failed to open keyboard state: %w", err)
	}

	injector, err := platform.NewInjector()
	if err != nil {
		closeKeyboard(keyboard)
		return nil, fmt.Errorf("failed to create keystroke injector: %w", err)
	}

	a := &Agent{
		cfg:       cfg,
		commands:  commands,
		state:     dispatch.NewState(),
		keyboard:  keyboard,
		injector:  injector,
		clipboard: platform.NewClipboard(),
		engine:    eng,
		surface:   surface,
	}

	if cfg.History.Enabled {
		dir, err := config.Dir()
		if err != nil {
			closeKeyboard(keyboard)
			return nil, err
		}
		db, err := storage.Open(dir)
		if err != nil {
			closeKeyboard(keyboard)
			return nil, fmt.Errorf("failed to open history: %w", err)
		}
		a.db = db
	}

	if cfg.Web.Enabled {
		var history web.History
		if a.db != nil {
			history = a.db
		}
		a.web = web.NewServer(history, a.state, cfg, cfg.Web.Port)
	}

	if cfg.Tray.Enabled {
		url := ""
		if a.web != nil {
			url = a.web.URL()
		}
		a.tray = systray.NewSystrayManager(url, a.state)
	}

	return a, nil
}

// Run starts the poller and coordinator and blocks until ctx is done or
// the user quits from the tray
func (a *Agent) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.close()

	requests := dispatch.NewRequests()
	interval := time.Duration(a.cfg.Poller.IntervalMs) * time.Millisecond
	poller := dispatch.NewPoller(a.commands, a.keyboard, a.state, requests, interval)
	coordinator := dispatch.NewCoordinator(requests, a.state, a.engine, a.surface, a.clipboard, a.injector, a)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		poller.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		coordinator.Run(ctx)
	}()

	if a.web != nil {
		go func() {
			if err := a.web.Start(); err != nil {
				slog.Error("Web server stopped", "error", err)
			}
		}()
	}

	slog.Info("alpa started", "engine", a.engine.Name(), "commands", len(a.commands))
	for _, c := range a.commands {
		slog.Debug("Command registered", "name", c.Name, "keys", c.Keys.String(), "action", c.Action)
	}

	if a.tray != nil {
		// The tray owns the main thread until it quits
		go func() {
			select {
			case <-ctx.Done():
				a.tray.Stop()
			case <-a.tray.WaitForQuit():
			}
		}()
		a.tray.Run()
		cancel()
	} else {
		<-ctx.Done()
	}

	if a.web != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
		defer stop()
		if err := a.web.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Failed to stop web server", "error", err)
		}
	}

	// A generation blocked on the engine or popup ends with ctx
	wg.Wait()
	return nil
}

// GenerationStarted implements dispatch.Observer
func (a *Agent) GenerationStarted(g dispatch.Generation) {
	if a.web != nil {
		a.web.BroadcastStatus("generating")
	}
	if a.tray != nil {
		a.tray.SetGenerating(true)
	}
}

// GenerationFinished implements dispatch.Observer
func (a *Agent) GenerationFinished(g dispatch.Generation) {
	if a.tray != nil {
		a.tray.SetGenerating(false)
	}
	if a.web != nil {
		a.web.BroadcastStatus("idle")
	}

	// Dismissed prompts aren't history
	if g.Outcome == dispatch.OutcomeEmpty {
		return
	}

	rec := storage.NewGeneration(g)
	if a.db != nil {
		if err := a.db.SaveGeneration(rec); err != nil {
			slog.Error("Failed to save generation", "error", err, "id", g.ID)
		}
	}
	if a.web != nil {
		a.web.BroadcastGeneration(rec)
	}
}

func (a *Agent) close() {
	closeKeyboard(a.keyboard)
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			slog.Warn("Failed to close history", "error", err)
		}
	}
}

func closeKeyboard(k platform.KeyboardState) {
	c, ok := k.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("Failed to close keyboard hook", "error", err)
	}
}
