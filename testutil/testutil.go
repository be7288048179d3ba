// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/ballotcheck/auth"
	"github.com/danielhkuo/ballotcheck/cliparse"
	"github.com/danielhkuo/ballotcheck/db"
	"github.com/danielhkuo/ballotcheck/models"
)

// TestDBURL is the connection string for the test database
const TestDBURL = ":memory:"

// SetupTestDB creates a fresh in-memory test database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.DialectSQLite, TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, db.DialectSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   TestDBURL,
		DatabaseType:  db.DialectSQLite,
		AdminKeySalt:  "test-admin-salt",
		ReferencePath: "reference.yaml",
		LogLevel:      "info",
	}
}

// CreateTestRun stores a signed run with the given report and returns it
// with its admin key
func CreateTestRun(t *testing.T, conn *sql.DB, cfg cliparse.Config, report models.ValidationReport) (models.ValidationRun, string) {
	t.Helper()

	run := models.ValidationRun{
		ID:         auth.GenerateRunID(),
		InputsHash: auth.HashInputs([]byte(time.Now().String())),
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
		Report:     report,
	}
	sig, err := auth.SignReport(run.InputsHash, report, cfg.AdminKeySalt)
	if err != nil {
		t.Fatalf("Failed to sign report: %v", err)
	}
	run.Signature = sig

	store := db.NewRunStore(conn, db.DialectSQLite)
	if err := store.SaveRun(context.Background(), run, ""); err != nil {
		t.Fatalf("Failed to create test run: %v", err)
	}

	return run, auth.GenerateAdminKey(run.ID, cfg.AdminKeySalt)
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
