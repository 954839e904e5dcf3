package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	genaipkg "github.com/jencodes13/course-correction/internal/genai"
	"github.com/jencodes13/course-correction/internal/server/ratelimit"
	"github.com/jencodes13/course-correction/internal/types"
)

// slidesRequest is the demo-slides body: a tagged union keyed by Action plus
// shared optional fields. Exactly one action branch executes per request;
// unknown or absent actions fall through to basic generation.
type slidesRequest struct {
	Action        string                `json:"action"`
	Topic         string                `json:"topic"`
	Sector        string                `json:"sector"`
	Style         string                `json:"style"`
	Content       string                `json:"content"`
	Findings      []types.Finding       `json:"findings"`
	Files         []types.FileReference `json:"files"`
	Theme         string                `json:"theme"`
	SlideTitle    string                `json:"slideTitle"`
	Deck          *types.SlideDeck      `json:"deck"`
	QuestionCount int                   `json:"questionCount"`
	Enhanced      bool                  `json:"enhanced"`
	InferSector   bool                  `json:"inferSector"`
	GenerateImage bool                  `json:"generateImage"`
}

// usageTally accumulates token usage across the model calls one action makes.
type usageTally struct {
	model  string
	tokens int
}

func (t *usageTally) add(res *genaipkg.Result) {
	if res == nil {
		return
	}
	t.model = res.Model
	t.tokens += res.TotalTokens
}

func (t *usageTally) usage() types.Usage {
	return types.Usage{Model: t.model, TotalTokens: t.tokens}
}

func (s *Server) handleDemoSlides(w http.ResponseWriter, r *http.Request) {
	var req slidesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.failRequest(w, r, &ErrValidation{Field: "body", Message: "invalid JSON"})
		return
	}
	if err := validateSlidesRequest(&req); err != nil {
		s.failRequest(w, r, err)
		return
	}

	// Auth is optional here: a valid token selects the authenticated quota
	// tier and enables usage tracking; an invalid one demotes the caller to
	// anonymous rather than rejecting the request.
	userID := uuid.Nil
	if r.Header.Get("Authorization") != "" {
		id, err := s.authenticate(r)
		if err != nil {
			s.log.Warn("demo-slides token rejected, treating caller as anonymous", zap.Error(err))
		} else {
			userID = id
		}
	}

	if !s.limiter.Bypass(r) {
		key, tier := ratelimit.ClientIP(r), ratelimit.TierAnonymous
		if userID != uuid.Nil {
			key, tier = userID.String(), ratelimit.TierAuthenticated
		}
		res, err := s.limiter.Allow(r.Context(), key, tier)
		if err != nil {
			// Fail open: a limiter-store outage must not take the endpoint down.
			s.log.Warn("rate limit check failed, allowing request", zap.Error(err))
		} else if !res.Allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())))
			s.jsonResponse(w, http.StatusTooManyRequests, map[string]any{
				"error": "Rate limit exceeded. Please try again later.",
				"limit": res.Limit,
			})
			return
		}
	}

	tally := &usageTally{}
	payload, err := s.dispatchSlidesAction(r.Context(), &req, tally)
	if err != nil {
		s.failRequest(w, r, err)
		return
	}

	s.recordUsage(r.Context(), userID, "demo-slides", tally.model, tally.tokens)
	s.jsonResponse(w, http.StatusOK, payload)
}

// validateSlidesRequest enforces the shared field limits before any network
// call.
func validateSlidesRequest(req *slidesRequest) error {
	if len(req.Topic) > maxTopicChars {
		return &ErrValidation{Field: "topic", Message: "topic exceeds the maximum length"}
	}
	if len(req.Content) > maxContentChars {
		return &ErrValidation{Field: "content", Message: "content exceeds the maximum length"}
	}
	if len(req.Files) > maxFiles {
		return &ErrValidation{Field: "files", Message: "too many files"}
	}
	if len(req.Findings) > maxFindings {
		return &ErrValidation{Field: "findings", Message: "too many findings"}
	}
	if req.QuestionCount < 0 || req.QuestionCount > maxQuizQuestions {
		return &ErrValidation{Field: "questionCount", Message: fmt.Sprintf("questionCount must be between 0 and %d", maxQuizQuestions)}
	}
	for _, f := range req.Findings {
		if !types.ValidCategory(f.Category) {
			return &ErrValidation{Field: "findings", Message: fmt.Sprintf("unknown finding category %q", f.Category)}
		}
		if !types.ValidSeverity(f.Severity) {
			return &ErrValidation{Field: "findings", Message: fmt.Sprintf("unknown finding severity %q", f.Severity)}
		}
	}
	return nil
}

func (s *Server) dispatchSlidesAction(ctx context.Context, req *slidesRequest, tally *usageTally) (any, error) {
	switch req.Action {
	case "scan":
		return s.slidesScan(ctx, req, tally)
	case "generate":
		return s.slidesGenerate(ctx, req, tally)
	case "generateTheme":
		return s.slidesTheme(ctx, req, tally)
	case "generateThemeOptions":
		return s.slidesThemeOptions(ctx, req, tally)
	case "generateFontOptions":
		return s.slidesFontOptions(ctx, req, tally)
	case "generateStudyGuide":
		return s.slidesStudyGuide(ctx, req, tally)
	case "generateQuiz":
		return s.slidesQuiz(ctx, req, tally)
	case "verify":
		return s.slidesVerify(ctx, req, tally)
	case "generateCourseSummary":
		return s.slidesCourseSummary(ctx, req, tally)
	case "generateSlideContent":
		return s.slidesSlideContent(ctx, req, tally)
	case "selectInfographicSlide":
		return s.slidesSelectInfographic(ctx, req, tally)
	default:
		return s.slidesBasic(ctx, req, tally)
	}
}
