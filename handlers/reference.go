// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/ballotcheck/middleware"
	"github.com/danielhkuo/ballotcheck/models"
)

type ReferenceHandler struct {
	ref models.Reference
}

func NewReferenceHandler(ref models.Reference) *ReferenceHandler {
	return &ReferenceHandler{ref: ref}
}

type PartiesResponse struct {
	Parties []models.Party `json:"parties"`
}

type ProvincesResponse struct {
	Provinces []models.Province `json:"provinces"`
}

// GetParties handles GET /reference/parties
func (h *ReferenceHandler) GetParties(w http.ResponseWriter, r *http.Request) {
	parties := h.ref.Parties
	if parties == nil {
		parties = []models.Party{}
	}
	middleware.JSONResponse(w, http.StatusOK, PartiesResponse{Parties: parties})
}

// GetProvinces handles GET /reference/provinces
// An optional region query parameter filters by region
func (h *ReferenceHandler) GetProvinces(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")
	if region != "" && !models.IsRegion(region) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "unknown region")
		return
	}

	provinces := []models.Province{}
	for _, p := range h.ref.Provinces {
		if region == "" || p.Region == region {
			provinces = append(provinces, p)
		}
	}
	middleware.JSONResponse(w, http.StatusOK, ProvincesResponse{Provinces: provinces})
}
