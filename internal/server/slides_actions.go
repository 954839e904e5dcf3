package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"

	genaipkg "github.com/jencodes13/course-correction/internal/genai"
	"github.com/jencodes13/course-correction/internal/prompts"
	"github.com/jencodes13/course-correction/internal/sanitize"
	"github.com/jencodes13/course-correction/internal/types"
)

const slidesPromptFile = "slides.json"

// sectorInferenceSample caps how much content is sent to the sector
// classifier.
const sectorInferenceSample = 4000

type deckResponse struct {
	types.SlideDeck
	Review *types.SlideReview `json:"review,omitempty"`
	Usage  types.Usage        `json:"_usage"`
}

// slidesSector resolves the audience sector for prompt interpolation. When
// inference is requested and content is available, a lite-model call
// classifies the content; any failure falls back to the supplied sector.
func (s *Server) slidesSector(ctx context.Context, req *slidesRequest, tally *usageTally) string {
	if req.InferSector && req.Content != "" {
		sample := normalizeContent(req.Content)
		if len(sample) > sectorInferenceSample {
			sample = sample[:sectorInferenceSample]
		}
		prompt := prompts.Format(prompts.MustGet(slidesPromptFile, "sectorInference"), map[string]string{
			"Content": sample,
		})
		res, err := s.generator.GenerateJSON(ctx, genaipkg.GenerateRequest{
			Model: genaipkg.ModelLite,
			Parts: []genai.Part{genai.Text(prompt)},
		})
		if err != nil {
			s.log.Warn("sector inference failed", zap.Error(err))
		} else {
			tally.add(res)
			if sector := strings.ToLower(strings.TrimSpace(res.Text)); sector != "" {
				return sector
			}
		}
	}
	if req.Sector != "" {
		return req.Sector
	}
	return "general"
}

func (s *Server) slidesSystem(sector string) string {
	return prompts.Format(prompts.MustGet(slidesPromptFile, "system"), map[string]string{
		"Sector": sector,
	})
}

func slidesStyle(req *slidesRequest) string {
	if req.Style == "" {
		return "clear and professional"
	}
	return req.Style
}

// slidesBasic is the default branch: generate a deck from a topic. On a
// model output that cannot be parsed as a deck, the raw text is wrapped into
// a single-slide deck instead of failing the request.
func (s *Server) slidesBasic(ctx context.Context, req *slidesRequest, tally *usageTally) (any, error) {
	if req.Topic == "" {
		return nil, &ErrValidation{Field: "topic", Message: "topic is required"}
	}
	sector := s.slidesSector(ctx, req, tally)

	prompt := prompts.Format(prompts.MustGet(slidesPromptFile, "basic"), map[string]string{
		"Topic":  sanitize.Text(req.Topic),
		"Sector": sector,
		"Style":  sanitize.Text(slidesStyle(req)),
	})
	parts := []genai.Part{genai.Text(prompt)}

	fileParts, err := s.resolver.ResolveParts(ctx, req.Files)
	if err != nil {
		return nil, err
	}
	parts = append(parts, fileParts...)

	res, err := s.generator.GenerateJSON(ctx, genaipkg.GenerateRequest{
		Parts:  parts,
		System: s.slidesSystem(sector),
		Schema: deckSchema(),
	})
	if err != nil {
		return nil, err
	}
	tally.add(res)

	var deck types.SlideDeck
	if err := unmarshalModelJSON(res.Text, &deck); err != nil {
		s.log.Warn("deck output unparseable, wrapping raw text", zap.Error(err))
		deck = types.SlideDeck{
			Title: req.Topic,
			Slides: []types.Slide{
				{Title: req.Topic, Body: genaipkg.CleanJSONBlock(res.Text)},
			},
		}
	}
	if deck.Sector == "" {
		deck.Sector = sector
	}
	return deckResponse{SlideDeck: deck, Usage: tally.usage()}, nil
}

// slidesScan reviews content and returns candidate findings for the user to
// approve. Findings round-trip through the client: the approved subset comes
// back in a later generate call. Unlike basic generation, an unparseable
// output here is surfaced as an upstream error because findings feed a
// second stage.
func (s *Server) slidesScan(ctx context.Context, req *slidesRequest, tally *usageTally) (any, error) {
	if req.Content == "" {
		return nil, &ErrValidation{Field: "content", Message: "content is required"}
	}

	prompt := prompts.Format(prompts.MustGet(slidesPromptFile, "scan"), map[string]string{
		"Content":     normalizeContent(req.Content),
		"MaxFindings": strconv.Itoa(maxFindings),
	})

	res, err := s.generator.GenerateJSON(ctx, genaipkg.GenerateRequest{
		Parts:  []genai.Part{genai.Text(prompt)},
		System: s.slidesSystem(s.slidesSector(ctx, req, tally)),
		Schema: findingsSchema(),
	})
	if err != nil {
		return nil, err
	}
	tally.add(res)

	cleaned := genaipkg.CleanJSONBlock(res.Text)
	if err := genaipkg.ValidateOutput("findings.json", []byte(cleaned)); err != nil {
		return nil, err
	}

	var parsed struct {
		Findings []types.Finding `json:"findings"`
	}
	if err := unmarshalModelJSON(cleaned, &parsed); err != nil {
		return nil, err
	}
	if parsed.Findings == nil {
		parsed.Findings = []types.Finding{}
	}

	return struct {
		Findings []types.Finding `json:"findings"`
		Usage    types.Usage     `json:"_usage"`
	}{parsed.Findings, tally.usage()}, nil
}

// slidesGenerate rebuilds a deck applying the approved findings. With the
// enhanced flag set, a second fixed-depth review call flags slides whose
// corrected content stayed too close to the flawed original and swaps in the
// reviewer's replacements. One pass, no retry loop.
func (s *Server) slidesGenerate(ctx context.Context, req *slidesRequest, tally *usageTally) (any, error) {
	if req.Topic == "" {
		return nil, &ErrValidation{Field: "topic", Message: "topic is required"}
	}
	if req.Content == "" {
		return nil, &ErrValidation{Field: "content", Message: "content is required"}
	}

	findingsJSON, err := json.Marshal(req.Findings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode findings: %w", err)
	}

	prompt := prompts.Format(prompts.MustGet(slidesPromptFile, "generate"), map[string]string{
		"Topic":    sanitize.Text(req.Topic),
		"Findings": string(findingsJSON),
		"Content":  normalizeContent(req.Content),
	})

	sector := s.slidesSector(ctx, req, tally)
	res, err := s.generator.GenerateJSON(ctx, genaipkg.GenerateRequest{
		Parts:  []genai.Part{genai.Text(prompt)},
		System: s.slidesSystem(sector),
		Schema: deckSchema(),
	})
	if err != nil {
		return nil, err
	}
	tally.add(res)

	var deck types.SlideDeck
	if err := unmarshalModelJSON(res.Text, &deck); err != nil {
		return nil, err
	}
	if deck.Sector == "" {
		deck.Sector = sector
	}

	resp := deckResponse{SlideDeck: deck}
	if req.Enhanced {
		review, err := s.reviewDeck(ctx, &resp.SlideDeck, findingsJSON, tally)
		if err != nil {
			return nil, err
		}
		resp.Review = review
	}
	resp.Usage = tally.usage()
	return resp, nil
}

// reviewDeck runs the self-correction pass over a first-pass deck, replacing
// flagged slides in place.
func (s *Server) reviewDeck(ctx context.Context, deck *types.SlideDeck, findingsJSON []byte, tally *usageTally) (*types.SlideReview, error) {
	deckJSON, err := json.Marshal(deck)
	if err != nil {
		return nil, fmt.Errorf("failed to encode deck: %w", err)
	}

	prompt := prompts.Format(prompts.MustGet(slidesPromptFile, "review"), map[string]string{
		"Findings": string(findingsJSON),
		"Deck":     string(deckJSON),
	})

	res, err := s.generator.GenerateJSON(ctx, genaipkg.GenerateRequest{
		Parts:  []genai.Part{genai.Text(prompt)},
		Schema: reviewSchema(),
	})
	if err != nil {
		return nil, err
	}
	tally.add(res)

	var review types.SlideReview
	if err := unmarshalModelJSON(res.Text, &review); err != nil {
		return nil, err
	}

	for _, issue := range review.Issues {
		if issue.Corrected == nil || issue.Index < 0 || issue.Index >= len(deck.Slides) {
			continue
		}
		deck.Slides[issue.Index] = *issue.Corrected
	}
	return &review, nil
}

func (s *Server) slidesTheme(ctx context.Context, req *slidesRequest, tally *usageTally) (any, error) {
	if req.Topic == "" {
		return nil, &ErrValidation{Field: "topic", Message: "topic is required"}
	}

	prompt := prompts.Format(prompts.MustGet(slidesPromptFile, "theme"), map[string]string{
		"Topic":  sanitize.Text(req.Topic),
		"Sector": s.slidesSector(ctx, req, tally),
	})
	res, err := s.generator.GenerateJSON(ctx, genaipkg.GenerateRequest{
		Parts:  []genai.Part{genai.Text(prompt)},
		Schema: themeSchema(),
	})
	if err != nil {
		return nil, err
	}
	tally.add(res)

	var theme types.Theme
	if err := unmarshalModelJSON(res.Text, &theme); err != nil {
		return nil, err
	}
	return struct {
		Theme types.Theme `json:"theme"`
		Usage types.Usage `json:"_usage"`
	}{theme, tally.usage()}, nil
}

func (s *Server) slidesThemeOptions(ctx context.Context, req *slidesRequest, tally *usageTally) (any, error) {
	if req.Topic == "" {
		return nil, &ErrValidation{Field: "topic", Message: "topic is required"}
	}

	prompt := prompts.Format(prompts.MustGet(slidesPromptFile, "themeOptions"), map[string]string{
		"Topic":  sanitize.Text(req.Topic),
		"Sector": s.slidesSector(ctx, req, tally),
	})
	res, err := s.generator.GenerateJSON(ctx, genaipkg.GenerateRequest{
		Parts:  []genai.Part{genai.Text(prompt)},
		Schema: themeOptionsSchema(),
	})
	if err != nil {
		return nil, err
	}
	tally.add(res)

	var parsed struct {
		Themes []types.Theme `json:"themes"`
	}
	if err := unmarshalModelJSON(res.Text, &parsed); err != nil {
		return nil, err
	}
	return struct {
		Themes []types.Theme `json:"themes"`
		Usage  types.Usage   `json:"_usage"`
	}{parsed.Themes, tally.usage()}, nil
}

func (s *Server) slidesFontOptions(ctx context.Context, req *slidesRequest, tally *usageTally) (any, error) {
	if req.Topic == "" {
		return nil, &ErrValidation{Field: "topic", Message: "topic is required"}
	}

	prompt := prompts.Format(prompts.MustGet(slidesPromptFile, "fontOptions"), map[string]string{
		"Topic":  sanitize.Text(req.Topic),
		"Sector": s.slidesSector(ctx, req, tally),
	})
	res, err := s.generator.GenerateJSON(ctx, genaipkg.GenerateRequest{
		Model:  genaipkg.ModelLite,
		Parts:  []genai.Part{genai.Text(prompt)},
		Schema: fontOptionsSchema(),
	})
	if err != nil {
		return nil, err
	}
	tally.add(res)

	var parsed struct {
		Fonts []types.FontPairing `json:"fonts"`
	}
	if err := unmarshalModelJSON(res.Text, &parsed); err != nil {
		return nil, err
	}
	return struct {
		Fonts []types.FontPairing `json:"fonts"`
		Usage types.Usage         `json:"_usage"`
	}{parsed.Fonts, tally.usage()}, nil
}

func (s *Server) slidesStudyGuide(ctx context.Context, req *slidesRequest, tally *usageTally) (any, error) {
	if req.Topic == "" {
		return nil, &ErrValidation{Field: "topic", Message: "topic is required"}
	}
	if req.Content == "" {
		return nil, &ErrValidation{Field: "content", Message: "content is required"}
	}

	prompt := prompts.Format(prompts.MustGet(slidesPromptFile, "studyGuide"), map[string]string{
		"Topic":   sanitize.Text(req.Topic),
		"Content": normalizeContent(req.Content),
	})
	res, err := s.generator.GenerateJSON(ctx, genaipkg.GenerateRequest{
		Parts:  []genai.Part{genai.Text(prompt)},
		System: s.slidesSystem(s.slidesSector(ctx, req, tally)),
		Schema: studyGuideSchema(),
	})
	if err != nil {
		return nil, err
	}
	tally.add(res)

	var guide types.StudyGuide
	if err := unmarshalModelJSON(res.Text, &guide); err != nil {
		return nil, err
	}
	return struct {
		types.StudyGuide
		Usage types.Usage `json:"_usage"`
	}{guide, tally.usage()}, nil
}

func (s *Server) slidesQuiz(ctx context.Context, req *slidesRequest, tally *usageTally) (any, error) {
	if req.Topic == "" {
		return nil, &ErrValidation{Field: "topic", Message: "topic is required"}
	}
	if req.Content == "" {
		return nil, &ErrValidation{Field: "content", Message: "content is required"}
	}
	count := req.QuestionCount
	if count == 0 {
		count = defaultQuizQuestions
	}

	prompt := prompts.Format(prompts.MustGet(slidesPromptFile, "quiz"), map[string]string{
		"Topic":         sanitize.Text(req.Topic),
		"QuestionCount": strconv.Itoa(count),
		"Content":       normalizeContent(req.Content),
	})
	res, err := s.generator.GenerateJSON(ctx, genaipkg.GenerateRequest{
		Parts:  []genai.Part{genai.Text(prompt)},
		System: s.slidesSystem(s.slidesSector(ctx, req, tally)),
		Schema: quizSchema(),
	})
	if err != nil {
		return nil, err
	}
	tally.add(res)

	var quiz types.Quiz
	if err := unmarshalModelJSON(res.Text, &quiz); err != nil {
		return nil, err
	}
	return struct {
		types.Quiz
		Usage types.Usage `json:"_usage"`
	}{quiz, tally.usage()}, nil
}

// verifiedClaim is the verify action's per-claim verdict.
type verifiedClaim struct {
	Claim   string `json:"claim"`
	Verdict string `json:"verdict"` // supported, outdated, unsupported
	Note    string `json:"note,omitempty"`
}

// slidesVerify fact-checks slide content with search grounding.
func (s *Server) slidesVerify(ctx context.Context, req *slidesRequest, tally *usageTally) (any, error) {
	if req.Content == "" {
		return nil, &ErrValidation{Field: "content", Message: "content is required"}
	}

	prompt := prompts.Format(prompts.MustGet(slidesPromptFile, "verify"), map[string]string{
		"Content": normalizeContent(req.Content),
	})
	res, err := s.generator.GenerateJSON(ctx, genaipkg.GenerateRequest{
		Parts:     []genai.Part{genai.Text(prompt)},
		Grounding: true,
	})
	if err != nil {
		return nil, err
	}
	tally.add(res)

	var parsed struct {
		Claims []verifiedClaim `json:"claims"`
	}
	if err := unmarshalModelJSON(res.Text, &parsed); err != nil {
		return nil, err
	}
	if parsed.Claims == nil {
		parsed.Claims = []verifiedClaim{}
	}
	return struct {
		Claims []verifiedClaim `json:"claims"`
		Usage  types.Usage     `json:"_usage"`
	}{parsed.Claims, tally.usage()}, nil
}

func (s *Server) slidesCourseSummary(ctx context.Context, req *slidesRequest, tally *usageTally) (any, error) {
	if req.Content == "" {
		return nil, &ErrValidation{Field: "content", Message: "content is required"}
	}

	prompt := prompts.Format(prompts.MustGet(slidesPromptFile, "courseSummary"), map[string]string{
		"Content": normalizeContent(req.Content),
	})
	res, err := s.generator.GenerateJSON(ctx, genaipkg.GenerateRequest{
		Parts:  []genai.Part{genai.Text(prompt)},
		Schema: courseSummarySchema(),
	})
	if err != nil {
		return nil, err
	}
	tally.add(res)

	var summary types.CourseSummary
	if err := unmarshalModelJSON(res.Text, &summary); err != nil {
		return nil, err
	}
	return struct {
		types.CourseSummary
		Usage types.Usage `json:"_usage"`
	}{summary, tally.usage()}, nil
}

func (s *Server) slidesSlideContent(ctx context.Context, req *slidesRequest, tally *usageTally) (any, error) {
	if req.Topic == "" {
		return nil, &ErrValidation{Field: "topic", Message: "topic is required"}
	}
	if req.SlideTitle == "" {
		return nil, &ErrValidation{Field: "slideTitle", Message: "slideTitle is required"}
	}

	prompt := prompts.Format(prompts.MustGet(slidesPromptFile, "slideContent"), map[string]string{
		"Title": sanitize.Text(req.SlideTitle),
		"Topic": sanitize.Text(req.Topic),
		"Style": sanitize.Text(slidesStyle(req)),
	})
	res, err := s.generator.GenerateJSON(ctx, genaipkg.GenerateRequest{
		Parts:  []genai.Part{genai.Text(prompt)},
		System: s.slidesSystem(s.slidesSector(ctx, req, tally)),
		Schema: slideSchema(),
	})
	if err != nil {
		return nil, err
	}
	tally.add(res)

	var slide types.Slide
	if err := unmarshalModelJSON(res.Text, &slide); err != nil {
		return nil, err
	}
	return struct {
		Slide types.Slide `json:"slide"`
		Usage types.Usage `json:"_usage"`
	}{slide, tally.usage()}, nil
}

// slidesSelectInfographic picks the slide best suited to infographic
// rendering and, on request, generates the infographic image for it.
func (s *Server) slidesSelectInfographic(ctx context.Context, req *slidesRequest, tally *usageTally) (any, error) {
	if req.Deck == nil || len(req.Deck.Slides) == 0 {
		return nil, &ErrValidation{Field: "deck", Message: "deck with at least one slide is required"}
	}

	deckJSON, err := json.Marshal(req.Deck)
	if err != nil {
		return nil, fmt.Errorf("failed to encode deck: %w", err)
	}

	prompt := prompts.Format(prompts.MustGet(slidesPromptFile, "infographicSelect"), map[string]string{
		"Deck": string(deckJSON),
	})
	res, err := s.generator.GenerateJSON(ctx, genaipkg.GenerateRequest{
		Parts:  []genai.Part{genai.Text(prompt)},
		Schema: infographicSelectSchema(),
	})
	if err != nil {
		return nil, err
	}
	tally.add(res)

	var parsed struct {
		Index  int    `json:"index"`
		Reason string `json:"reason"`
	}
	if err := unmarshalModelJSON(res.Text, &parsed); err != nil {
		return nil, err
	}
	if parsed.Index < 0 || parsed.Index >= len(req.Deck.Slides) {
		return nil, fmt.Errorf("%w: slide index %d out of range", genaipkg.ErrModelContract, parsed.Index)
	}

	resp := struct {
		Index  int         `json:"index"`
		Reason string      `json:"reason"`
		Image  string      `json:"image,omitempty"`
		Usage  types.Usage `json:"_usage"`
	}{Index: parsed.Index, Reason: parsed.Reason}

	if req.GenerateImage {
		image, err := s.generator.GenerateImage(ctx, infographicPrompt(req.Deck.Slides[parsed.Index], req.Theme), nil)
		if err != nil {
			return nil, err
		}
		resp.Image = image
	}
	resp.Usage = tally.usage()
	return resp, nil
}

// infographicPrompt describes the selected slide for image generation.
func infographicPrompt(slide types.Slide, theme string) string {
	var b strings.Builder
	b.WriteString("Render a clean, flat-design infographic for the slide \"")
	b.WriteString(slide.Title)
	b.WriteString("\".")
	if slide.ImagePrompt != "" {
		b.WriteString(" ")
		b.WriteString(slide.ImagePrompt)
	}
	if len(slide.Bullets) > 0 {
		b.WriteString(" Key points: ")
		b.WriteString(strings.Join(slide.Bullets, "; "))
		b.WriteString(".")
	}
	if theme != "" {
		b.WriteString(" Color theme: ")
		b.WriteString(theme)
		b.WriteString(".")
	}
	b.WriteString(" No photographic elements, no dense paragraphs of text.")
	return b.String()
}
