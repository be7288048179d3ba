// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cache keeps validation reports in Redis keyed by inputs hash.

Validation is deterministic, so a report computed once for a given pair of
datasets and reference tables can be served again without recomputing it.
With no REDIS_URL the cache is disabled and every lookup misses.

	c, err := cache.New(cfg.RedisURL, cache.DefaultTTL)
	report, hit, err := c.Get(ctx, inputsHash)
*/
package cache
