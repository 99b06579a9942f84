package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markestedt/alpa/config"
)

func ollamaServer(t *testing.T, chunks []string) (*httptest.Server, *map[string]any) {
	t.Helper()
	var received map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/x-ndjson")
		for _, c := range chunks {
			line, _ := json.Marshal(map[string]any{"model": "test", "response": c, "done": false})
			fmt.Fprintf(w, "%s\n", line)
		}
		fmt.Fprintln(w, `{"model":"test","response":"","done":true}`)
	}))
	t.Cleanup(srv.Close)

	return srv, &received
}

func TestOllamaEngineStreamsChunks(t *testing.T) {
	srv, received := ollamaServer(t, []string{"Hello", " world"})

	e, err := NewOllamaEngine(config.ModelConfig{Host: srv.URL, Model: "llama3", Raw: true, MaxTokens: 32})
	require.NoError(t, err)

	var got []string
	err = e.Generate(context.Background(), "Say hi", func(text string) Feedback {
		got = append(got, text)
		return Continue
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Hello", " world"}, got)
	assert.Equal(t, "llama3", (*received)["model"])
	assert.Equal(t, "Say hi", (*received)["prompt"])
	assert.Equal(t, true, (*received)["raw"])
}

func TestOllamaEngineHaltIsNotAnError(t *testing.T) {
	srv, _ := ollamaServer(t, []string{"one", "two", "three"})

	e, err := NewOllamaEngine(config.ModelConfig{Host: srv.URL, Model: "llama3"})
	require.NoError(t, err)

	var got []string
	err = e.Generate(context.Background(), "count", func(text string) Feedback {
		got = append(got, text)
		if text == "two" {
			return Halt
		}
		return Continue
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, got)
}

func TestOllamaEngineServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"model not found"}`)
	}))
	defer srv.Close()

	e, err := NewOllamaEngine(config.ModelConfig{Host: srv.URL, Model: "missing"})
	require.NoError(t, err)

	err = e.Generate(context.Background(), "x", func(string) Feedback { return Continue })
	assert.Error(t, err)
}

func openAIServer(t *testing.T, chunks []string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/completions") {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		for i, c := range chunks {
			payload, _ := json.Marshal(map[string]any{
				"id":      fmt.Sprintf("cmpl-%d", i),
				"object":  "text_completion",
				"created": 1700000000,
				"model":   "test",
				"choices": []map[string]any{{"text": c, "index": 0, "finish_reason": nil, "logprobs": nil}},
			})
			fmt.Fprintf(w, "data: %s\n\n", payload)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestOpenAIEngineStreamsChunks(t *testing.T) {
	srv := openAIServer(t, []string{"foo", "bar"})
	e := NewOpenAIEngine(config.ModelConfig{BaseURL: srv.URL + "/v1/", APIKey: "test", Model: "test"})

	var got []string
	err := e.Generate(context.Background(), "prompt", func(text string) Feedback {
		got = append(got, text)
		return Continue
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"foo", "bar"}, got)
}

func TestOpenAIEngineHalt(t *testing.T) {
	srv := openAIServer(t, []string{"foo", "bar", "baz"})
	e := NewOpenAIEngine(config.ModelConfig{BaseURL: srv.URL + "/v1/", APIKey: "test", Model: "test"})

	calls := 0
	err := e.Generate(context.Background(), "prompt", func(text string) Feedback {
		calls++
		return Halt
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestNewEngine(t *testing.T) {
	_, err := NewEngine(config.ModelConfig{Provider: "openai"})
	assert.Error(t, err, "openai without key or base url")

	e, err := NewEngine(config.ModelConfig{Provider: "openai", BaseURL: "http://localhost:8080/v1/"})
	require.NoError(t, err)
	assert.Equal(t, "openai", e.Name())

	e, err = NewEngine(config.ModelConfig{Provider: "ollama", Host: "http://localhost:11434"})
	require.NoError(t, err)
	assert.Equal(t, "ollama", e.Name())

	_, err = NewEngine(config.ModelConfig{Provider: "llama-rs"})
	assert.Error(t, err)
}
