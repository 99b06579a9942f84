package dispatch

import (
	"time"

	"markestedt/alpa/command"
)

// Outcome is how a generation attempt ended
type Outcome string

const (
	OutcomeRunning   Outcome = "running"
	OutcomeCompleted Outcome = "completed"
	OutcomeStopped   Outcome = "stopped"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeEmpty     Outcome = "empty"
	OutcomeFailed    Outcome = "failed"
)

// Generation describes one generation attempt
type Generation struct {
	ID       string
	Spec     command.GenerateSpec
	Engine   string
	Prompt   string
	Output   string
	Chunks   int
	Outcome  Outcome
	Err      error
	Started  time.Time
	Resolved time.Time // prompt text available
	Finished time.Time
}

// PromptLatency is the time spent obtaining the prompt text
func (g *Generation) PromptLatency() time.Duration {
	if g.Resolved.IsZero() {
		return g.Finished.Sub(g.Started)
	}
	return g.Resolved.Sub(g.Started)
}

// GenerationLatency is the time spent streaming
func (g *Generation) GenerationLatency() time.Duration {
	if g.Resolved.IsZero() {
		return 0
	}
	return g.Finished.Sub(g.Resolved)
}

// Observer is told about every generation attempt
type Observer interface {
	GenerationStarted(g Generation)
	GenerationFinished(g Generation)
}

type nopObserver struct{}

func (nopObserver) GenerationStarted(Generation)  {}
func (nopObserver) GenerationFinished(Generation) {}
