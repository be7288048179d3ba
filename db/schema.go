// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported dialects, as accepted by DATABASE_TYPE
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// Open connects to the database and verifies the connection.
func Open(dialect, url string) (*sql.DB, error) {
	var driver string
	switch dialect {
	case DialectSQLite:
		driver = "sqlite"
	case DialectPostgres:
		driver = "postgres"
	default:
		return nil, fmt.Errorf("unsupported database type %q", dialect)
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if dialect == DialectSQLite {
		// One connection keeps :memory: databases shared and avoids
		// SQLITE_BUSY on concurrent writes.
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dialect string) error {
	_, err := db.Exec(schemaFor(dialect))
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

func schemaFor(dialect string) string {
	if dialect == DialectPostgres {
		return schema
	}
	return strings.NewReplacer(
		"JSONB", "TEXT",
		"DEFAULT NOW()", "DEFAULT CURRENT_TIMESTAMP",
	).Replace(schema)
}

const schema = `
-- Validation Runs
CREATE TABLE IF NOT EXISTS validation_run (
    id TEXT PRIMARY KEY,
    inputs_hash TEXT NOT NULL,
    valid BOOLEAN NOT NULL,
    violation_count INTEGER NOT NULL,
    warning_count INTEGER NOT NULL,
    signature TEXT NOT NULL,
    client_hash TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    payload JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_validation_run_inputs_hash ON validation_run(inputs_hash);
CREATE INDEX IF NOT EXISTS idx_validation_run_created_at ON validation_run(created_at);
`
