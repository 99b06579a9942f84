package engine

import (
	"context"
	"fmt"

	"markestedt/alpa/config"
)

// Feedback tells the engine whether to keep streaming
type Feedback int

const (
	Continue Feedback = iota
	Halt
)

// TokenFunc receives each streamed chunk of generated text
type TokenFunc func(text string) Feedback

// Engine streams generated text for a prompt, one callback per chunk.
// Generate returns nil when the callback halts the stream.
type Engine interface {
	Name() string
	Generate(ctx context.Context, prompt string, onToken TokenFunc) error
}

// NewEngine creates a generation engine based on configuration
func NewEngine(cfg config.ModelConfig) (Engine, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllamaEngine(cfg)
	case "openai":
		if cfg.APIKey == "" && cfg.BaseURL == "" {
			return nil, fmt.Errorf("api_key is required for the OpenAI provider")
		}
		return NewOpenAIEngine(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}
