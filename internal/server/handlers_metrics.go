package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

const (
	metricsDefaultDaysBack = 7
	metricsMaxDaysBack     = 30
)

type metricsRequest struct {
	DaysBack int `json:"daysBack"`
}

// handleCloudMetrics returns aggregated request counts and error rates from
// the cloud monitoring API. There is no end-user auth: access relies on the
// server-held service-account key.
func (s *Server) handleCloudMetrics(w http.ResponseWriter, r *http.Request) {
	var req metricsRequest
	// An empty body means defaults.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.failRequest(w, r, &ErrValidation{Field: "body", Message: "invalid JSON"})
		return
	}
	if req.DaysBack < 0 || req.DaysBack > metricsMaxDaysBack {
		s.failRequest(w, r, &ErrValidation{Field: "daysBack", Message: "daysBack must be between 0 and 30"})
		return
	}
	if req.DaysBack == 0 {
		req.DaysBack = metricsDefaultDaysBack
	}

	if s.metrics == nil {
		s.errorResponse(w, http.StatusInternalServerError, "Monitoring is not configured.")
		return
	}

	metrics, err := s.metrics.Fetch(r.Context(), req.DaysBack)
	if err != nil {
		s.failRequest(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, metrics)
}
