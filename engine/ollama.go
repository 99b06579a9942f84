package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"

	"markestedt/alpa/config"
)

var errHalted = errors.New("generation halted")

// OllamaEngine streams completions from a local Ollama server
type OllamaEngine struct {
	client      *api.Client
	model       string
	raw         bool
	maxTokens   int
	temperature float64
}

// NewOllamaEngine creates an engine talking to cfg.Host, or to OLLAMA_HOST
// when no host is configured
func NewOllamaEngine(cfg config.ModelConfig) (*OllamaEngine, error) {
	var client *api.Client
	if cfg.Host != "" {
		base, err := url.Parse(cfg.Host)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ollama host: %w", err)
		}
		client = api.NewClient(base, http.DefaultClient)
	} else {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
	}

	return &OllamaEngine{
		client:      client,
		model:       cfg.Model,
		raw:         cfg.Raw,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// Name returns the provider name
func (e *OllamaEngine) Name() string {
	return "ollama"
}

// Generate streams the completion of prompt into onToken
func (e *OllamaEngine) Generate(ctx context.Context, prompt string, onToken TokenFunc) error {
	opts := map[string]any{}
	if e.maxTokens > 0 {
		opts["num_predict"] = e.maxTokens
	}
	if e.temperature > 0 {
		opts["temperature"] = e.temperature
	}

	req := &api.GenerateRequest{
		Model:   e.model,
		Prompt:  prompt,
		Raw:     e.raw,
		Options: opts,
	}

	respFunc := func(resp api.GenerateResponse) error {
		if resp.Response == "" {
			return nil
		}
		if onToken(resp.Response) == Halt {
			return errHalted
		}
		return nil
	}

	if err := e.client.Generate(ctx, req, respFunc); err != nil {
		if errors.Is(err, errHalted) {
			return nil
		}
		return fmt.Errorf("ollama generate failed: %w", err)
	}

	return nil
}
