package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"
)

// DB is the shared database handle, initialized once by Init.
var DB *sql.DB

const schema = `
CREATE TABLE IF NOT EXISTS predictions (
	id UUID PRIMARY KEY,
	source TEXT NOT NULL,
	locator TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	language TEXT NOT NULL DEFAULT 'en',
	status TEXT NOT NULL,
	sentence_count INTEGER,
	final_statements JSONB,
	error_message TEXT,
	processing_time_ms INTEGER,
	metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions (created_at DESC);
`

// Init opens the connection described by DATABASE_URL and ensures the
// predictions table exists.
func Init() error {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}

	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(30 * time.Minute)

	if err := conn.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	DB = conn
	log.Printf("[DB] Connected and schema ensured")
	return nil
}
