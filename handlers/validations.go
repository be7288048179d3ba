// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/danielhkuo/ballotcheck/auth"
	"github.com/danielhkuo/ballotcheck/cache"
	"github.com/danielhkuo/ballotcheck/cliparse"
	"github.com/danielhkuo/ballotcheck/dataset"
	"github.com/danielhkuo/ballotcheck/db"
	"github.com/danielhkuo/ballotcheck/export"
	"github.com/danielhkuo/ballotcheck/middleware"
	"github.com/danielhkuo/ballotcheck/models"
	"github.com/danielhkuo/ballotcheck/validation"
)

// List limits for GET /validations
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

type ValidationHandler struct {
	runs        *db.RunStore
	cfg         cliparse.Config
	validator   *validation.Validator
	fingerprint []byte
	cache       *cache.ReportCache
}

// NewValidationHandler builds the handler. reports may be nil, which
// disables report caching.
func NewValidationHandler(conn *sql.DB, cfg cliparse.Config, v *validation.Validator, ref models.Reference, reports *cache.ReportCache) (*ValidationHandler, error) {
	fingerprint, err := auth.ReferenceFingerprint(ref)
	if err != nil {
		return nil, err
	}
	return &ValidationHandler{
		runs:        db.NewRunStore(conn, cfg.DatabaseType),
		cfg:         cfg,
		validator:   v,
		fingerprint: fingerprint,
		cache:       reports,
	}, nil
}

// CreateRun handles POST /validations
// Validates both datasets, stores the signed report and returns it with
// the run's admin key
func (h *ValidationHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRunRequest
	if err := middleware.ParseJSONBody(w, r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	constituency, consJSON, err := parseDataset(models.DatasetConstituency, req.Constituency)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	partyList, plJSON, err := parseDataset(models.DatasetPartyList, req.PartyList)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	inputsHash := auth.HashInputs(consJSON, plJSON, h.fingerprint)

	report, hit, err := h.cache.Get(ctx, inputsHash)
	if err != nil {
		// A broken cache only costs a recomputation
		zap.S().Warnw("report cache read failed", "inputs_hash", inputsHash, "error", err)
	}
	if !hit {
		report = h.validator.Validate(constituency, partyList)
		if err := h.cache.Set(ctx, inputsHash, report); err != nil {
			zap.S().Warnw("report cache write failed", "inputs_hash", inputsHash, "error", err)
		}
	}

	signature, err := auth.SignReport(inputsHash, report, h.cfg.AdminKeySalt)
	if err != nil {
		zap.S().Errorw("failed to sign report", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create validation run")
		return
	}

	run := models.ValidationRun{
		ID:         auth.GenerateRunID(),
		InputsHash: inputsHash,
		Signature:  signature,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
		Report:     report,
	}

	clientHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.AdminKeySalt)
	if err := h.runs.SaveRun(ctx, run, clientHash); err != nil {
		zap.S().Errorw("failed to save run", "run_id", run.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create validation run")
		return
	}

	zap.S().Infow("validation run created",
		"run_id", run.ID,
		"valid", report.Valid,
		"violations", len(report.Violations),
		"warnings", len(report.Warnings),
		"cached", hit,
	)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateRunResponse{
		Run:      run,
		AdminKey: auth.GenerateAdminKey(run.ID, h.cfg.AdminKeySalt),
	})
}

// parseDataset decodes one raw request array and returns its records with
// the compacted JSON used for the inputs hash.
func parseDataset(name string, raw json.RawMessage) ([]models.RawRecord, []byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil, fmt.Errorf("%s is required", name)
	}

	records, err := dataset.ParseJSON(trimmed)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %v", name, err)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return nil, nil, fmt.Errorf("%s: %v", name, err)
	}
	return records, compact.Bytes(), nil
}

// ListRuns handles GET /validations
// Accepts an optional limit query parameter
func (h *ValidationHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxListLimit)
	}

	runs, err := h.runs.ListRuns(r.Context(), limit)
	if err != nil {
		zap.S().Errorw("failed to list runs", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ListRunsResponse{Runs: runs})
}

// GetRun handles GET /validations/{id}
func (h *ValidationHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, run)
}

// ExportRun handles GET /validations/{id}/report.xlsx
func (h *ValidationHandler) ExportRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, run); err != nil {
		zap.S().Errorw("failed to export run", "run_id", run.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to export report")
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ballotcheck-%s.xlsx"`, run.ID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		zap.S().Warnw("failed to write export", "run_id", run.ID, "error", err)
	}
}

// DeleteRun handles DELETE /validations/{id}
// Requires the run's admin key in X-Admin-Key
func (h *ValidationHandler) DeleteRun(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("id")
	if runID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(runID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	err := h.runs.DeleteRun(r.Context(), runID)
	if errors.Is(err, db.ErrRunNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Validation run not found")
		return
	}
	if err != nil {
		zap.S().Errorw("failed to delete run", "run_id", runID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	zap.S().Infow("validation run deleted", "run_id", runID)
	w.WriteHeader(http.StatusNoContent)
}

// loadRun fetches the run named by the id path value and checks its
// signature. It writes the error response itself and reports false on
// failure.
func (h *ValidationHandler) loadRun(w http.ResponseWriter, r *http.Request) (models.ValidationRun, bool) {
	runID := r.PathValue("id")
	if runID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return models.ValidationRun{}, false
	}

	run, err := h.runs.GetRun(r.Context(), runID)
	if errors.Is(err, db.ErrRunNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Validation run not found")
		return models.ValidationRun{}, false
	}
	if err != nil {
		zap.S().Errorw("failed to query run", "run_id", runID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.ValidationRun{}, false
	}

	if err := auth.VerifySignature(run.InputsHash, run.Report, run.Signature, h.cfg.AdminKeySalt); err != nil {
		zap.S().Errorw("stored report failed signature check", "run_id", runID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Stored report failed integrity check")
		return models.ValidationRun{}, false
	}

	return run, true
}
