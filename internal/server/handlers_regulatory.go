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

type regulatoryRequest struct {
	Content       string `json:"content" validate:"required,max=100000"`
	DomainContext string `json:"domainContext" validate:"omitempty,max=200"`
	Location      string `json:"location" validate:"omitempty,max=200"`
}

type regulatoryResponse struct {
	Updates []types.RegulatoryUpdate `json:"updates"`
	Usage   types.Usage              `json:"_usage"`
}

// handleRegulatoryUpdate fact-checks supplied content against current
// regulations using search grounding.
func (s *Server) handleRegulatoryUpdate(w http.ResponseWriter, r *http.Request) {
	userID, err := s.authenticate(r)
	if err != nil {
		s.failRequest(w, r, err)
		return
	}

	var req regulatoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.failRequest(w, r, &ErrValidation{Field: "body", Message: "invalid JSON"})
		return
	}
	if err := s.validateBody(&req); err != nil {
		s.failRequest(w, r, err)
		return
	}
	if req.DomainContext == "" {
		req.DomainContext = "industry"
	}
	if req.Location == "" {
		req.Location = "the applicable jurisdiction"
	}

	prompt := prompts.Format(prompts.MustGet("regulatory.json", "updates"), map[string]string{
		"Content":       normalizeContent(req.Content),
		"DomainContext": sanitize.Text(req.DomainContext),
		"Location":      sanitize.Text(req.Location),
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
		Updates []types.RegulatoryUpdate `json:"updates"`
	}
	if err := unmarshalModelJSON(res.Text, &parsed); err != nil {
		s.failRequest(w, r, err)
		return
	}
	if parsed.Updates == nil {
		parsed.Updates = []types.RegulatoryUpdate{}
	}

	s.recordUsage(r.Context(), userID, "regulatory-update", res.Model, res.TotalTokens)
	s.jsonResponse(w, http.StatusOK, regulatoryResponse{
		Updates: parsed.Updates,
		Usage:   types.Usage{Model: res.Model, TotalTokens: res.TotalTokens},
	})
}
