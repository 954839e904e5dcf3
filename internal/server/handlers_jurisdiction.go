package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/generative-ai-go/genai"

	genaipkg "github.com/jencodes13/course-correction/internal/genai"
	"github.com/jencodes13/course-correction/internal/prompts"
	"github.com/jencodes13/course-correction/internal/sanitize"
	"github.com/jencodes13/course-correction/internal/types"
)

type jurisdictionRequest struct {
	Location       string `json:"location" validate:"required,max=200"`
	RegulationType string `json:"regulationType" validate:"omitempty,max=200"`
}

type jurisdictionResponse struct {
	types.JurisdictionInfo
	Usage types.Usage `json:"_usage"`
}

// handleJurisdictionLookup identifies the regulator for a regulation type in
// a location. The lookup is search-grounded, so the response schema cannot be
// attached; the prompt demands bare JSON and the output is parsed defensively.
func (s *Server) handleJurisdictionLookup(w http.ResponseWriter, r *http.Request) {
	userID, err := s.authenticate(r)
	if err != nil {
		s.failRequest(w, r, err)
		return
	}

	var req jurisdictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.failRequest(w, r, &ErrValidation{Field: "body", Message: "invalid JSON"})
		return
	}
	if err := s.validateBody(&req); err != nil {
		s.failRequest(w, r, err)
		return
	}
	if req.RegulationType == "" {
		req.RegulationType = "general"
	}

	prompt := prompts.Format(prompts.MustGet("regulatory.json", "jurisdiction"), map[string]string{
		"Location":       sanitize.Text(req.Location),
		"RegulationType": sanitize.Text(req.RegulationType),
	})

	res, err := s.generator.GenerateJSON(r.Context(), genaipkg.GenerateRequest{
		Parts:     []genai.Part{genai.Text(prompt)},
		Grounding: true,
	})
	if err != nil {
		s.failRequest(w, r, err)
		return
	}

	var parsed struct {
		Authority types.Authority `json:"authority"`
	}
	if err := unmarshalModelJSON(res.Text, &parsed); err != nil {
		s.failRequest(w, r, err)
		return
	}

	s.recordUsage(r.Context(), userID, "jurisdiction-lookup", res.Model, res.TotalTokens)
	s.jsonResponse(w, http.StatusOK, jurisdictionResponse{
		JurisdictionInfo: types.JurisdictionInfo{
			Location:       req.Location,
			RegulationType: req.RegulationType,
			Authority:      parsed.Authority,
		},
		Usage: types.Usage{Model: res.Model, TotalTokens: res.TotalTokens},
	})
}
