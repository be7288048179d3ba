// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"go.uber.org/zap"

	"github.com/danielhkuo/ballotcheck/cache"
	"github.com/danielhkuo/ballotcheck/cliparse"
	"github.com/danielhkuo/ballotcheck/handlers"
	"github.com/danielhkuo/ballotcheck/middleware"
	"github.com/danielhkuo/ballotcheck/models"
	"github.com/danielhkuo/ballotcheck/validation"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, v *validation.Validator, ref models.Reference, reports *cache.ReportCache) (*http.ServeMux, error) {
	mux := http.NewServeMux()

	// Initialize handlers
	validationHandler, err := handlers.NewValidationHandler(db, cfg, v, ref, reports)
	if err != nil {
		return nil, err
	}
	referenceHandler := handlers.NewReferenceHandler(ref)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			zap.S().Warnw("health check failed", "error", err)
			middleware.ErrorResponse(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Validation runs
	mux.HandleFunc("POST /validations", middleware.WithLogging(validationHandler.CreateRun))
	mux.HandleFunc("GET /validations", middleware.WithLogging(validationHandler.ListRuns))
	mux.HandleFunc("GET /validations/{id}", middleware.WithLogging(validationHandler.GetRun))
	mux.HandleFunc("GET /validations/{id}/report.xlsx", middleware.WithLogging(validationHandler.ExportRun))
	mux.HandleFunc("DELETE /validations/{id}", middleware.WithLogging(validationHandler.DeleteRun))

	// Reference tables
	mux.HandleFunc("GET /reference/parties", middleware.WithLogging(referenceHandler.GetParties))
	mux.HandleFunc("GET /reference/provinces", middleware.WithLogging(referenceHandler.GetProvinces))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ballotcheck API v1"))
	})

	return mux, nil
}
