// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/ballotcheck/models"
)

var ErrRunNotFound = errors.New("validation run not found")

// RunStore persists validation runs. The report is kept as a JSON payload;
// the summary columns duplicate it for listing.
type RunStore struct {
	db      *sql.DB
	dialect string
}

func NewRunStore(db *sql.DB, dialect string) *RunStore {
	return &RunStore{db: db, dialect: dialect}
}

// rebind rewrites ? placeholders as $1, $2, ... for postgres
func (s *RunStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// SaveRun stores a run. clientHash may be empty.
func (s *RunStore) SaveRun(ctx context.Context, run models.ValidationRun, clientHash string) error {
	payload, err := json.Marshal(run.Report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	var client sql.NullString
	if clientHash != "" {
		client = sql.NullString{String: clientHash, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO validation_run (id, inputs_hash, valid, violation_count, warning_count,
		                            signature, client_hash, created_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), run.ID, run.InputsHash, run.Report.Valid, len(run.Report.Violations), len(run.Report.Warnings),
		run.Signature, client, run.CreatedAt.UTC(), string(payload))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetRun loads a run with its report
func (s *RunStore) GetRun(ctx context.Context, id string) (models.ValidationRun, error) {
	var run models.ValidationRun
	var payload []byte
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, inputs_hash, signature, created_at, payload
		FROM validation_run
		WHERE id = ?
	`), id).Scan(&run.ID, &run.InputsHash, &run.Signature, &run.CreatedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ValidationRun{}, ErrRunNotFound
	}
	if err != nil {
		return models.ValidationRun{}, fmt.Errorf("query run: %w", err)
	}

	if err := json.Unmarshal(payload, &run.Report); err != nil {
		return models.ValidationRun{}, fmt.Errorf("decode report: %w", err)
	}
	run.CreatedAt = run.CreatedAt.UTC()
	return run, nil
}

// ListRuns returns the most recent runs first
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]models.RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, inputs_hash, valid, violation_count, warning_count, created_at
		FROM validation_run
		ORDER BY created_at DESC, id
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []models.RunSummary{}
	for rows.Next() {
		var r models.RunSummary
		var created time.Time
		if err := rows.Scan(&r.ID, &r.InputsHash, &r.Valid, &r.ViolationCount, &r.WarningCount, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt = created.UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run
func (s *RunStore) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM validation_run WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}
