package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Open opens an existing SQLite database for browsing.
func Open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every pooled connection to :memory: would see its own empty database.
	if dbPath == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// OpenDemo opens an in-memory database holding the demo restaurant journal.
func OpenDemo(ctx context.Context) (*sql.DB, error) {
	db, err := Open(MemoryPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, demoSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := seedDemo(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
