package storage

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"markestedt/alpa/dispatch"
)

// ErrNotFound is returned when a generation id doesn't exist
var ErrNotFound = errors.New("generation not found")

// Generation is one stored generation attempt
type Generation struct {
	ID                  int64     `db:"id" json:"id"`
	UUID                string    `db:"uuid" json:"uuid"`
	Timestamp           time.Time `db:"timestamp" json:"timestamp"`
	Input               string    `db:"input" json:"input"`
	Mode                string    `db:"mode" json:"mode"`
	Newline             string    `db:"newline" json:"newline"`
	Engine              string    `db:"engine" json:"engine"`
	Prompt              string    `db:"prompt" json:"prompt"`
	Output              string    `db:"output" json:"output"`
	ChunkCount          int       `db:"chunk_count" json:"chunk_count"`
	CharacterCount      int       `db:"character_count" json:"character_count"`
	PromptLatencyMs     int64     `db:"prompt_latency_ms" json:"prompt_latency_ms"`
	GenerationLatencyMs int64     `db:"generation_latency_ms" json:"generation_latency_ms"`
	TotalLatencyMs      int64     `db:"total_latency_ms" json:"total_latency_ms"`
	Outcome             string    `db:"outcome" json:"outcome"`
	ErrorMessage        string    `db:"error_message" json:"error_message,omitempty"`
}

// NewGeneration converts a finished generation into its stored form
func NewGeneration(g dispatch.Generation) *Generation {
	input := g.Spec.Input.Kind.String()
	if load := g.Spec.Input.Load.String(); load != "" {
		input += ":" + load
	}

	rec := &Generation{
		UUID:                g.ID,
		Input:               input,
		Mode:                g.Spec.Mode.Kind.String(),
		Newline:             g.Spec.Newline.String(),
		Engine:              g.Engine,
		Prompt:              g.Prompt,
		Output:              g.Output,
		ChunkCount:          g.Chunks,
		CharacterCount:      utf8.RuneCountInString(g.Output),
		PromptLatencyMs:     g.PromptLatency().Milliseconds(),
		GenerationLatencyMs: g.GenerationLatency().Milliseconds(),
		TotalLatencyMs:      g.Finished.Sub(g.Started).Milliseconds(),
		Outcome:             string(g.Outcome),
	}
	if g.Err != nil {
		rec.ErrorMessage = g.Err.Error()
	}
	return rec
}

// SaveGeneration saves a generation to the database
func (db *DB) SaveGeneration(g *Generation) error {
	query := `
		INSERT INTO generations (
			uuid, input, mode, newline, engine, prompt, output,
			chunk_count, character_count,
			prompt_latency_ms, generation_latency_ms, total_latency_ms,
			outcome, error_message
		) VALUES (
			:uuid, :input, :mode, :newline, :engine, :prompt, :output,
			:chunk_count, :character_count,
			:prompt_latency_ms, :generation_latency_ms, :total_latency_ms,
			:outcome, :error_message
		)
	`

	result, err := db.conn.NamedExec(query, g)
	if err != nil {
		return fmt.Errorf("failed to save generation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	g.ID = id
	return nil
}

// GetGenerations retrieves generations with pagination, newest first
func (db *DB) GetGenerations(limit, offset int) ([]Generation, error) {
	query := `
		SELECT
			id, uuid, timestamp, input, mode, newline, engine, prompt, output,
			chunk_count, character_count,
			prompt_latency_ms, generation_latency_ms, total_latency_ms,
			outcome, error_message
		FROM generations
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?
	`

	generations := []Generation{}
	if err := db.conn.Select(&generations, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to query generations: %w", err)
	}

	return generations, nil
}

// DeleteGeneration deletes a generation by ID
func (db *DB) DeleteGeneration(id int64) error {
	result, err := db.conn.Exec(`DELETE FROM generations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete generation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// GetGenerationCount returns the total number of generations
func (db *DB) GetGenerationCount() (int, error) {
	var count int
	err := db.conn.Get(&count, "SELECT COUNT(*) FROM generations")
	return count, err
}
