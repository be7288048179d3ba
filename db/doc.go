// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections, schema creation and run storage.

# Connections

Two dialects are supported, selected by DATABASE_TYPE:

  - sqlite: modernc.org/sqlite, a file path or ":memory:"
  - postgres: lib/pq, a connection URL

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn, cfg.DatabaseType); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
SQLite stores the payload as TEXT instead of JSONB.

# Tables

  - validation_run: one row per validation, the report as a JSON payload

Summary columns (valid, violation_count, warning_count) are copies of the
payload so runs can be listed without decoding reports.

# Indexes

  - validation_run.inputs_hash
  - validation_run.created_at

# Run Storage

	store := db.NewRunStore(conn, cfg.DatabaseType)
	err := store.SaveRun(ctx, run, clientHash)
	run, err := store.GetRun(ctx, id)      // ErrRunNotFound
	runs, err := store.ListRuns(ctx, 50)   // newest first
	err = store.DeleteRun(ctx, id)         // ErrRunNotFound

Queries are written with ? placeholders and rebound to $N for postgres.
*/
package db
