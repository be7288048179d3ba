// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package logging configures the zap global logger.

Packages log through the sugared global with key/value pairs:

	zap.S().Infow("Run stored", "run_id", run.ID, "valid", run.Report.Valid)

The level comes from LOG_LEVEL (default "info").
*/
package logging
