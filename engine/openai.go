package engine

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"markestedt/alpa/config"
)

// OpenAIEngine streams raw completions from an OpenAI-compatible server
// (OpenAI itself, llama.cpp, vLLM, ...)
type OpenAIEngine struct {
	client      openai.Client
	model       string
	maxTokens   int
	temperature float64
}

// NewOpenAIEngine creates a new OpenAI-compatible engine
func NewOpenAIEngine(cfg config.ModelConfig) *OpenAIEngine {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-3.5-turbo-instruct"
	}

	return &OpenAIEngine{
		client:      openai.NewClient(opts...),
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// Name returns the provider name
func (e *OpenAIEngine) Name() string {
	return "openai"
}

// Generate streams the completion of prompt into onToken
func (e *OpenAIEngine) Generate(ctx context.Context, prompt string, onToken TokenFunc) error {
	params := openai.CompletionNewParams{
		Model: openai.CompletionNewParamsModel(e.model),
		Prompt: openai.CompletionNewParamsPromptUnion{
			OfString: openai.String(prompt),
		},
	}
	if e.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(e.maxTokens))
	}
	if e.temperature > 0 {
		params.Temperature = openai.Float(e.temperature)
	}

	stream := e.client.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 || chunk.Choices[0].Text == "" {
			continue
		}

		if onToken(chunk.Choices[0].Text) == Halt {
			return nil
		}
	}

	if err := stream.Err(); err != nil {
		return fmt.Errorf("openai stream failed: %w", err)
	}

	return nil
}
