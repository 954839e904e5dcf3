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

type visualRequest struct {
	Content string `json:"content" validate:"required,max=100000"`
	Theme   string `json:"theme" validate:"omitempty,max=500"`
}

type visualResponse struct {
	Transformations []types.Transformation `json:"transformations"`
	Usage           types.Usage            `json:"_usage"`
}

// handleVisualTransform proposes visual treatments for content sections. The
// output is validated against the embedded JSON schema before unmarshalling,
// so enum violations surface as contract errors rather than silent zero
// values.
func (s *Server) handleVisualTransform(w http.ResponseWriter, r *http.Request) {
	userID, err := s.authenticate(r)
	if err != nil {
		s.failRequest(w, r, err)
		return
	}

	var req visualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.failRequest(w, r, &ErrValidation{Field: "body", Message: "invalid JSON"})
		return
	}
	if err := s.validateBody(&req); err != nil {
		s.failRequest(w, r, err)
		return
	}
	if req.Theme == "" {
		req.Theme = "none specified"
	}

	prompt := prompts.Format(prompts.MustGet("visual.json", "transform"), map[string]string{
		"Content": normalizeContent(req.Content),
		"Theme":   sanitize.Text(req.Theme),
	})

	res, err := s.generator.GenerateJSON(r.Context(), genaipkg.GenerateRequest{
		Parts:  []genai.Part{genai.Text(prompt)},
		Schema: transformationsSchema(),
	})
	if err != nil {
		s.failRequest(w, r, err)
		return
	}

	cleaned := genaipkg.CleanJSONBlock(res.Text)
	if err := genaipkg.ValidateOutput("transformations.json", []byte(cleaned)); err != nil {
		s.failRequest(w, r, err)
		return
	}

	var parsed struct {
		Transformations []types.Transformation `json:"transformations"`
	}
	if err := unmarshalModelJSON(cleaned, &parsed); err != nil {
		s.failRequest(w, r, err)
		return
	}
	if parsed.Transformations == nil {
		parsed.Transformations = []types.Transformation{}
	}

	s.recordUsage(r.Context(), userID, "visual-transform", res.Model, res.TotalTokens)
	s.jsonResponse(w, http.StatusOK, visualResponse{
		Transformations: parsed.Transformations,
		Usage:           types.Usage{Model: res.Model, TotalTokens: res.TotalTokens},
	})
}
