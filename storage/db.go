package storage

import (
	"fmt"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

type DB struct {
	conn *sqlx.DB
}

// Open opens the database and initializes the schema
func Open(configDir string) (*DB, error) {
	dbPath := filepath.Join(configDir, "alpa.db")

	conn, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the database schema
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS generations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uuid TEXT NOT NULL UNIQUE,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,

		-- What was asked
		input TEXT NOT NULL,
		mode TEXT NOT NULL,
		newline TEXT NOT NULL,
		engine TEXT NOT NULL,
		prompt TEXT NOT NULL,

		-- What was typed
		output TEXT NOT NULL,
		chunk_count INTEGER NOT NULL,
		character_count INTEGER NOT NULL,

		-- Timing metrics
		prompt_latency_ms INTEGER NOT NULL,
		generation_latency_ms INTEGER NOT NULL,
		total_latency_ms INTEGER NOT NULL,

		-- Status
		outcome TEXT NOT NULL,
		error_message TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_generations_timestamp ON generations(timestamp);
	CREATE INDEX IF NOT EXISTS idx_generations_outcome ON generations(outcome);
	`

	_, err := db.conn.Exec(schema)
	return err
}
