package storage

import (
	"fmt"
)

// DailyStats represents statistics for a single day
type DailyStats struct {
	Date             string `db:"date" json:"date"`
	TotalGenerations int    `db:"total_generations" json:"total_generations"`
	TotalCharacters  int    `db:"total_characters" json:"total_characters"`
	SuccessCount     int    `db:"success_count" json:"success_count"`
	FailureCount     int    `db:"failure_count" json:"failure_count"`
}

// EngineStats represents statistics grouped by engine
type EngineStats struct {
	Engine           string  `db:"engine" json:"engine"`
	TotalGenerations int     `db:"total_generations" json:"total_generations"`
	TotalCharacters  int     `db:"total_characters" json:"total_characters"`
	FailureCount     int     `db:"failure_count" json:"failure_count"`
	AvgLatencyMs     float64 `db:"avg_latency_ms" json:"avg_latency_ms"`
}

// OutcomeStats counts generations per outcome
type OutcomeStats struct {
	Outcome string `db:"outcome" json:"outcome"`
	Count   int    `db:"count" json:"count"`
}

// OverallStats represents overall statistics
type OverallStats struct {
	TotalGenerations       int     `db:"total_generations" json:"total_generations"`
	TotalChunks            int     `db:"total_chunks" json:"total_chunks"`
	TotalCharacters        int     `db:"total_characters" json:"total_characters"`
	SuccessCount           int     `db:"success_count" json:"success_count"`
	FailureCount           int     `db:"failure_count" json:"failure_count"`
	AvgPromptLatencyMs     float64 `db:"avg_prompt_latency_ms" json:"avg_prompt_latency_ms"`
	AvgGenerationLatencyMs float64 `db:"avg_generation_latency_ms" json:"avg_generation_latency_ms"`
	AvgTotalLatencyMs      float64 `db:"avg_total_latency_ms" json:"avg_total_latency_ms"`
}

// Outcomes that typed what the engine produced
const successOutcomes = `('completed', 'stopped', 'cancelled')`

// GetDailyStats retrieves statistics grouped by date for the last N days
func (db *DB) GetDailyStats(days int) ([]DailyStats, error) {
	query := `
		SELECT
			DATE(timestamp) as date,
			COUNT(*) as total_generations,
			COALESCE(SUM(character_count), 0) as total_characters,
			SUM(CASE WHEN outcome IN ` + successOutcomes + ` THEN 1 ELSE 0 END) as success_count,
			SUM(CASE WHEN outcome = 'failed' THEN 1 ELSE 0 END) as failure_count
		FROM generations
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
		GROUP BY DATE(timestamp)
		ORDER BY date DESC
	`

	stats := []DailyStats{}
	if err := db.conn.Select(&stats, query, days); err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}

	return stats, nil
}

// GetEngineStats retrieves statistics grouped by engine for the last N days
func (db *DB) GetEngineStats(days int) ([]EngineStats, error) {
	query := `
		SELECT
			engine,
			COUNT(*) as total_generations,
			COALESCE(SUM(character_count), 0) as total_characters,
			SUM(CASE WHEN outcome = 'failed' THEN 1 ELSE 0 END) as failure_count,
			COALESCE(AVG(total_latency_ms), 0) as avg_latency_ms
		FROM generations
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
			AND outcome != 'empty'
		GROUP BY engine
		ORDER BY total_generations DESC
	`

	stats := []EngineStats{}
	if err := db.conn.Select(&stats, query, days); err != nil {
		return nil, fmt.Errorf("failed to query engine stats: %w", err)
	}

	return stats, nil
}

// GetOutcomeStats counts generations per outcome for the last N days
func (db *DB) GetOutcomeStats(days int) ([]OutcomeStats, error) {
	query := `
		SELECT outcome, COUNT(*) as count
		FROM generations
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
		GROUP BY outcome
		ORDER BY count DESC, outcome
	`

	stats := []OutcomeStats{}
	if err := db.conn.Select(&stats, query, days); err != nil {
		return nil, fmt.Errorf("failed to query outcome stats: %w", err)
	}

	return stats, nil
}

// GetOverallStats retrieves overall statistics for the last N days.
// Empty attempts are left out since nothing was generated.
func (db *DB) GetOverallStats(days int) (*OverallStats, error) {
	query := `
		SELECT
			COUNT(*) as total_generations,
			COALESCE(SUM(chunk_count), 0) as total_chunks,
			COALESCE(SUM(character_count), 0) as total_characters,
			COALESCE(SUM(CASE WHEN outcome IN ` + successOutcomes + ` THEN 1 ELSE 0 END), 0) as success_count,
			COALESCE(SUM(CASE WHEN outcome = 'failed' THEN 1 ELSE 0 END), 0) as failure_count,
			COALESCE(AVG(prompt_latency_ms), 0) as avg_prompt_latency_ms,
			COALESCE(AVG(generation_latency_ms), 0) as avg_generation_latency_ms,
			COALESCE(AVG(total_latency_ms), 0) as avg_total_latency_ms
		FROM generations
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
			AND outcome != 'empty'
	`

	var stats OverallStats
	if err := db.conn.Get(&stats, query, days); err != nil {
		return nil, fmt.Errorf("failed to query overall stats: %w", err)
	}

	return &stats, nil
}
