package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// OpenSQLite opens the SQLite database at dbPath and creates the tables
// the presentation repository needs
func OpenSQLite(dbPath string) (*sql.DB, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	database, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := createTables(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return database, nil
}

func createTables(database *sql.DB) error {
	createPresentationsTable := `
	CREATE TABLE IF NOT EXISTS presentations (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		slides TEXT NOT NULL DEFAULT '[]',
		user_id TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := database.Exec(createPresentationsTable); err != nil {
		return fmt.Errorf("failed to create presentations table: %w", err)
	}

	// listing is ordered by creation
	createIndex := `CREATE INDEX IF NOT EXISTS idx_presentations_created_at ON presentations(created_at);`
	if _, err := database.Exec(createIndex); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}
