// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the ballotcheck command.

ballotcheck validates the constituency and party-list datasets that feed
the 2566/2569 invalid-ballot comparison: 400 constituency records and 77
party-list records, checked field by field, across datasets and against
canonical province and party tables.

# Checking Files

	ballotcheck check --constituency const.json --party-list pl.json --reference ref.yaml
	ballotcheck check --bundle data.js --reference ref.yaml --xlsx report.xlsx --json

Exit status is 0 for a valid report, 1 when there are violations and 2
when the inputs cannot be read.

# Starting the Server

The server takes environment variables, an optional .env file or CLI flags:

	ADMIN_KEY_SALT=... REFERENCE_PATH=ref.yaml DATABASE_URL=runs.db ballotcheck serve

Or with flags:

	ballotcheck serve -p 3318 -t postgres -d "postgres://..." --reference ref.yaml

# Configuration

Required settings:

  - ADMIN_KEY_SALT (--admin-salt): Secret for admin keys and report signatures
  - REFERENCE_PATH (--reference): Province and party tables (YAML)
  - DATABASE_URL (-d): Postgres connection string or sqlite file

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - REDIS_URL (--redis-url): Report cache
  - LOG_LEVEL (--log-level): debug, info, warn or error (default: info)

# Architecture

  - validation: the rules, warnings and report ordering
  - dataset: JSON and JavaScript bundle parsing
  - reference: reference table loading
  - export: XLSX reports
  - handlers, router, middleware: HTTP API
  - db: run persistence
  - cache: Redis report cache
  - auth: run IDs, admin keys, input hashes and report signatures
  - cliparse, logging: configuration and zap setup

See package documentation for each component.
*/
package main
