// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/danielhkuo/ballotcheck/auth"
	"github.com/danielhkuo/ballotcheck/cliparse"
	"github.com/danielhkuo/ballotcheck/export"
	"github.com/danielhkuo/ballotcheck/models"
	"github.com/danielhkuo/ballotcheck/testutil"
	"github.com/danielhkuo/ballotcheck/validation"
)

func setupValidationHandler(t *testing.T) (*ValidationHandler, *sql.DB, cliparse.Config) {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	ref := testutil.TestReference()

	v, err := validation.New(ref)
	require.NoError(t, err)

	handler, err := NewValidationHandler(conn, cfg, v, ref, nil)
	require.NoError(t, err)
	return handler, conn, cfg
}

// runBody encodes both datasets as a POST /validations body
func runBody(t *testing.T, constituency, partyList []models.ElectionRecord) string {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"constituency": constituency,
		"party_list":   partyList,
	})
	require.NoError(t, err)
	return string(body)
}

func postRun(handler *ValidationHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/validations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.CreateRun(w, req)
	return w
}

func TestCreateRun(t *testing.T) {
	handler, _, cfg := setupValidationHandler(t)

	t.Run("clean datasets", func(t *testing.T) {
		w := postRun(handler, runBody(t, testutil.ConstituencyFixture(), testutil.PartyListFixture()))
		testutil.AssertStatus(t, w, http.StatusCreated)

		var resp models.CreateRunResponse
		testutil.AssertJSON(t, w, &resp)

		assert.True(t, resp.Run.Report.Valid)
		assert.Empty(t, resp.Run.Report.Violations)
		assert.Equal(t, models.ConstituencyCount, resp.Run.Report.Summary.ConstituencyCount)
		assert.Equal(t, models.PartyListCount, resp.Run.Report.Summary.PartyListCount)
		assert.Len(t, resp.Run.InputsHash, 64)
		assert.NoError(t, auth.ValidateAdminKey(resp.Run.ID, resp.AdminKey, cfg.AdminKeySalt))
		assert.NoError(t, auth.VerifySignature(resp.Run.InputsHash, resp.Run.Report, resp.Run.Signature, cfg.AdminKeySalt))
	})

	t.Run("defective record", func(t *testing.T) {
		cons := testutil.ConstituencyFixture()
		cons[0].MarginVotes++

		w := postRun(handler, runBody(t, cons, testutil.PartyListFixture()))
		testutil.AssertStatus(t, w, http.StatusCreated)

		var resp models.CreateRunResponse
		testutil.AssertJSON(t, w, &resp)

		require.False(t, resp.Run.Report.Valid)
		require.Len(t, resp.Run.Report.Violations, 1)
		v := resp.Run.Report.Violations[0]
		assert.Equal(t, models.InvalidMargin, v.Rule)
		assert.Equal(t, models.FieldMarginVotes, v.Field)
		assert.Equal(t, "BKK_1", v.RecordID)
		assert.Equal(t, []int{0}, v.Positions)
	})

	t.Run("javascript literals in arrays", func(t *testing.T) {
		body := `{"constituency":[{"cons_id":"BKK_1","percent_invalid":NaN,},],"party_list":[]}`
		w := postRun(handler, body)
		// NaN is not JSON, so the request body itself is rejected
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("empty datasets", func(t *testing.T) {
		w := postRun(handler, `{"constituency":[],"party_list":[]}`)
		testutil.AssertStatus(t, w, http.StatusCreated)

		var resp models.CreateRunResponse
		testutil.AssertJSON(t, w, &resp)
		assert.False(t, resp.Run.Report.Valid)
		assert.Equal(t, 2, resp.Run.Report.Summary.ViolationsByRule[string(models.CardinalityMismatch)])
	})
}

func TestCreateRun_BadRequests(t *testing.T) {
	handler, _, _ := setupValidationHandler(t)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"invalid JSON", `{not json`, "Invalid JSON"},
		{"missing constituency", `{"party_list":[]}`, "constituency is required"},
		{"null party list", `{"constituency":[],"party_list":null}`, "party_list is required"},
		{"constituency not an array", `{"constituency":{"cons_id":"BKK_1"},"party_list":[]}`, "constituency: dataset must be a JSON array"},
		{"party list not an array", `{"constituency":[],"party_list":"x"}`, "party_list: dataset must be a JSON array"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postRun(handler, tt.body)
			testutil.AssertStatus(t, w, http.StatusBadRequest)

			var resp models.ErrorResponse
			testutil.AssertJSON(t, w, &resp)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestCreateRun_SameInputsSameHash(t *testing.T) {
	handler, _, _ := setupValidationHandler(t)
	body := runBody(t, testutil.ConstituencyFixture(), testutil.PartyListFixture())

	var first, second models.CreateRunResponse
	w := postRun(handler, body)
	testutil.AssertStatus(t, w, http.StatusCreated)
	testutil.AssertJSON(t, w, &first)

	// Whitespace differences do not change the inputs hash
	w = postRun(handler, strings.ReplaceAll(body, ",", ", "))
	testutil.AssertStatus(t, w, http.StatusCreated)
	testutil.AssertJSON(t, w, &second)

	assert.NotEqual(t, first.Run.ID, second.Run.ID)
	assert.Equal(t, first.Run.InputsHash, second.Run.InputsHash)
	assert.Equal(t, first.Run.Signature, second.Run.Signature)
	assert.Equal(t, first.Run.Report, second.Run.Report)
}

func TestListRuns(t *testing.T) {
	handler, conn, cfg := setupValidationHandler(t)

	list := func(query string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/validations"+query, nil)
		w := httptest.NewRecorder()
		handler.ListRuns(w, req)
		return w
	}

	t.Run("empty", func(t *testing.T) {
		w := list("")
		testutil.AssertStatus(t, w, http.StatusOK)
		assert.JSONEq(t, `{"runs":[]}`, w.Body.String())
	})

	testutil.CreateTestRun(t, conn, cfg, models.ValidationReport{Valid: true, Violations: []models.Violation{}, Warnings: []models.Warning{}})
	testutil.CreateTestRun(t, conn, cfg, models.ValidationReport{
		Violations: []models.Violation{{Dataset: models.DatasetConstituency, Rule: models.CardinalityMismatch, Detail: "expected 400 constituency records, found 0"}},
		Warnings:   []models.Warning{},
	})

	t.Run("all", func(t *testing.T) {
		w := list("")
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.ListRunsResponse
		testutil.AssertJSON(t, w, &resp)
		require.Len(t, resp.Runs, 2)

		violations := 0
		for _, r := range resp.Runs {
			violations += r.ViolationCount
		}
		assert.Equal(t, 1, violations)
	})

	t.Run("limit", func(t *testing.T) {
		w := list("?limit=1")
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.ListRunsResponse
		testutil.AssertJSON(t, w, &resp)
		assert.Len(t, resp.Runs, 1)
	})

	for _, bad := range []string{"?limit=0", "?limit=-3", "?limit=abc"} {
		t.Run("bad "+bad, func(t *testing.T) {
			testutil.AssertStatus(t, list(bad), http.StatusBadRequest)
		})
	}
}

func TestGetRun(t *testing.T) {
	handler, conn, cfg := setupValidationHandler(t)

	report := models.ValidationReport{
		Valid:      true,
		Violations: []models.Violation{},
		Warnings: []models.Warning{{
			Dataset: models.DatasetPartyList,
			Kind:    models.ProvinceCoverageGap,
			Detail:  "province XAA has no constituency records",
		}},
		Summary: models.ReportSummary{
			ViolationsByRule: map[string]int{},
			WarningsByKind:   map[string]int{string(models.ProvinceCoverageGap): 1},
		},
	}
	run, _ := testutil.CreateTestRun(t, conn, cfg, report)

	get := func(id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/validations/"+id, nil)
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()
		handler.GetRun(w, req)
		return w
	}

	t.Run("found", func(t *testing.T) {
		w := get(run.ID)
		testutil.AssertStatus(t, w, http.StatusOK)

		var got models.ValidationRun
		testutil.AssertJSON(t, w, &got)
		assert.Equal(t, run.ID, got.ID)
		assert.Equal(t, run.InputsHash, got.InputsHash)
		assert.True(t, run.CreatedAt.Equal(got.CreatedAt))
		assert.Equal(t, report, got.Report)
	})

	t.Run("not found", func(t *testing.T) {
		testutil.AssertStatus(t, get("missing"), http.StatusNotFound)
	})

	t.Run("empty id", func(t *testing.T) {
		testutil.AssertStatus(t, get(""), http.StatusBadRequest)
	})

	t.Run("tampered report", func(t *testing.T) {
		tampered, _ := testutil.CreateTestRun(t, conn, cfg, report)
		_, err := conn.Exec(`UPDATE validation_run SET payload = ? WHERE id = ?`,
			`{"valid":false,"violations":[],"warnings":[],"summary":{}}`, tampered.ID)
		require.NoError(t, err)

		testutil.AssertStatus(t, get(tampered.ID), http.StatusInternalServerError)
	})
}

func TestExportRun(t *testing.T) {
	handler, conn, cfg := setupValidationHandler(t)

	run, _ := testutil.CreateTestRun(t, conn, cfg, models.ValidationReport{
		Violations: []models.Violation{{
			Dataset:   models.DatasetConstituency,
			RecordID:  "BKK_1",
			Positions: []int{0},
			Rule:      models.InvalidMargin,
			Field:     models.FieldMarginVotes,
			Detail:    "margin_votes is 10001, winner minus runner-up is 10000",
		}},
		Warnings: []models.Warning{},
	})

	req := httptest.NewRequest("GET", "/validations/"+run.ID+"/report.xlsx", nil)
	req.SetPathValue("id", run.ID)
	w := httptest.NewRecorder()
	handler.ExportRun(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), run.ID+".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.ViolationsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Contains(t, rows[1], "BKK_1")
	assert.Contains(t, rows[1], string(models.InvalidMargin))

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/validations/missing/report.xlsx", nil)
		req.SetPathValue("id", "missing")
		w := httptest.NewRecorder()
		handler.ExportRun(w, req)
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestDeleteRun(t *testing.T) {
	handler, conn, cfg := setupValidationHandler(t)
	run, adminKey := testutil.CreateTestRun(t, conn, cfg, models.ValidationReport{Valid: true})

	del := func(id, key string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("DELETE", "/validations/"+id, nil, map[string]string{"X-Admin-Key": key})
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()
		handler.DeleteRun(w, req)
		return w
	}

	t.Run("missing admin key", func(t *testing.T) {
		testutil.AssertStatus(t, del(run.ID, ""), http.StatusUnauthorized)
	})

	t.Run("wrong admin key", func(t *testing.T) {
		otherKey := auth.GenerateAdminKey("another-run", cfg.AdminKeySalt)
		testutil.AssertStatus(t, del(run.ID, otherKey), http.StatusUnauthorized)
	})

	t.Run("valid admin key", func(t *testing.T) {
		w := del(run.ID, adminKey)
		testutil.AssertStatus(t, w, http.StatusNoContent)

		var count int
		require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM validation_run WHERE id = ?`, run.ID).Scan(&count))
		assert.Zero(t, count)
	})

	t.Run("already deleted", func(t *testing.T) {
		testutil.AssertStatus(t, del(run.ID, adminKey), http.StatusNotFound)
	})
}
