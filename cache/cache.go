// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/danielhkuo/ballotcheck/models"
)

const (
	keyPrefix  = "ballotcheck:report:"
	DefaultTTL = 24 * time.Hour
)

// ReportCache stores reports by inputs hash. A ReportCache without a
// Redis client, including a nil *ReportCache, misses on every Get and
// drops every Set.
type ReportCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to the Redis server at url. An empty url returns a
// disabled cache.
func New(url string, ttl time.Duration) (*ReportCache, error) {
	if url == "" {
		return &ReportCache{}, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ReportCache{rdb: redis.NewClient(opts), ttl: ttl}, nil
}

// Enabled reports whether a Redis client is configured.
func (c *ReportCache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Ping checks the connection.
func (c *ReportCache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *ReportCache) Get(ctx context.Context, inputsHash string) (models.ValidationReport, bool, error) {
	var report models.ValidationReport
	if !c.Enabled() {
		return report, false, nil
	}

	val, err := c.rdb.Get(ctx, Key(inputsHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return report, false, nil
		}
		return report, false, err
	}
	if err := json.Unmarshal(val, &report); err != nil {
		return models.ValidationReport{}, false, fmt.Errorf("decode cached report: %w", err)
	}
	return report, true, nil
}

func (c *ReportCache) Set(ctx context.Context, inputsHash string, report models.ValidationReport) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, Key(inputsHash), data, c.ttl).Err()
}

func (c *ReportCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}

// Key returns the Redis key for an inputs hash.
func Key(inputsHash string) string {
	return keyPrefix + inputsHash
}
