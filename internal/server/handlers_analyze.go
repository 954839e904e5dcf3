package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"

	genaipkg "github.com/jencodes13/course-correction/internal/genai"
	"github.com/jencodes13/course-correction/internal/prompts"
	"github.com/jencodes13/course-correction/internal/sanitize"
	"github.com/jencodes13/course-correction/internal/types"
)

// Request field limits, enforced before any network call.
const (
	maxTopicChars    = 500
	maxContentChars  = 100_000
	maxFiles         = 5
	maxFindings      = 20

	defaultQuizQuestions = 5
	maxQuizQuestions     = 20
)

type analyzeRequest struct {
	Text  string                `json:"text"`
	Files []types.FileReference `json:"files"`
	Model string                `json:"model"`
}

type analyzeResponse struct {
	types.CourseAnalysis
	Usage types.Usage `json:"_usage"`
}

func (s *Server) handleAnalyzeCourse(w http.ResponseWriter, r *http.Request) {
	userID, err := s.authenticate(r)
	if err != nil {
		s.failRequest(w, r, err)
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.failRequest(w, r, &ErrValidation{Field: "body", Message: "invalid JSON"})
		return
	}
	if req.Text == "" && len(req.Files) == 0 {
		s.failRequest(w, r, &ErrValidation{Field: "text", Message: "text or files is required"})
		return
	}
	if len(req.Text) > maxContentChars {
		s.failRequest(w, r, &ErrValidation{Field: "text", Message: "text exceeds the maximum length"})
		return
	}
	if len(req.Files) > maxFiles {
		s.failRequest(w, r, &ErrValidation{Field: "files", Message: "too many files"})
		return
	}

	prompt := prompts.Format(prompts.MustGet("analysis.json", "analyze"), map[string]string{
		"Content": normalizeContent(req.Text),
	})
	parts := []genai.Part{genai.Text(prompt)}

	fileParts, err := s.resolver.ResolveParts(r.Context(), req.Files)
	if err != nil {
		s.failRequest(w, r, err)
		return
	}
	parts = append(parts, fileParts...)

	res, err := s.generator.GenerateJSON(r.Context(), genaipkg.GenerateRequest{
		Model:  req.Model,
		Parts:  parts,
		System: prompts.MustGet("analysis.json", "system"),
		Schema: analysisSchema(),
	})
	if err != nil {
		s.failRequest(w, r, err)
		return
	}

	var analysis types.CourseAnalysis
	if err := unmarshalModelJSON(res.Text, &analysis); err != nil {
		s.failRequest(w, r, err)
		return
	}

	s.recordUsage(r.Context(), userID, "analyze-course", res.Model, res.TotalTokens)
	s.jsonResponse(w, http.StatusOK, analyzeResponse{
		CourseAnalysis: analysis,
		Usage:          types.Usage{Model: res.Model, TotalTokens: res.TotalTokens},
	})
}

// normalizeContent extracts text from HTML input and strips injection
// phrasing before interpolation into a prompt.
func normalizeContent(s string) string {
	lower := strings.ToLower(s)
	if strings.Contains(lower, "<html") || strings.Contains(lower, "<body") ||
		strings.Contains(lower, "<!doctype") {
		s = sanitize.HTMLToText(s)
	}
	return sanitize.Text(s)
}
