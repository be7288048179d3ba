// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Commands that own a pflag.FlagSet (cobra) register the same flags and
resolve them after parsing:

	cliparse.RegisterFlags(cmd.Flags())
	cfg, err := cliparse.FromFlags(cmd.Flags())

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: PostgreSQL connection string or SQLite path (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - AdminKeySalt: Secret for admin key HMAC (required)
  - ReferencePath: Province and party tables YAML (required)
  - RedisURL: Report cache (optional)
  - LogLevel: debug, info, warn or error (default: info)

# CLI Flags

	-p, --port           Server port
	-d, --database-url   Database URL
	-t, --database-type  Database type
	--reference          Reference tables file
	--redis-url          Redis URL
	--log-level          Log level
	--admin-salt         Admin key salt
	--env-file           .env file (default: .env)

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	REFERENCE_PATH → --reference
	REDIS_URL      → --redis-url
	LOG_LEVEL      → --log-level
	ADMIN_KEY_SALT → --admin-salt

CLI flags take precedence over environment variables. Variables from the
.env file fill in only what the environment does not already set.

# Validation

Config is validated with struct tags. Errors name the environment variable:

	ADMIN_KEY_SALT required
	invalid DATABASE_TYPE "mysql" (want one of: sqlite postgres)
*/
package cliparse
