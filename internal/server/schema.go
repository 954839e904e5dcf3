package server

import (
	"github.com/google/generative-ai-go/genai"

	"github.com/jencodes13/course-correction/internal/types"
)

// Response schemas passed to structured generation calls. Field sets mirror
// the types package; enums come from the same source as the validators so
// the model and the server agree on allowed values.

func slideSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":        {Type: genai.TypeString},
			"bullets":      {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"body":         {Type: genai.TypeString},
			"speakerNotes": {Type: genai.TypeString},
			"layout":       {Type: genai.TypeString},
			"imagePrompt":  {Type: genai.TypeString},
		},
		Required: []string{"title"},
	}
}

func deckSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":  {Type: genai.TypeString},
			"sector": {Type: genai.TypeString},
			"slides": {Type: genai.TypeArray, Items: slideSchema()},
		},
		Required: []string{"title", "slides"},
	}
}

func findingsSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"findings": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"category":      {Type: genai.TypeString, Enum: types.FindingCategories()},
						"severity":      {Type: genai.TypeString, Enum: types.FindingSeverities()},
						"title":         {Type: genai.TypeString},
						"description":   {Type: genai.TypeString},
						"sourceSnippet": {Type: genai.TypeString},
						"currentInfo":   {Type: genai.TypeString},
					},
					Required: []string{"category", "severity", "title", "description"},
				},
			},
		},
		Required: []string{"findings"},
	}
}

func themeSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":            {Type: genai.TypeString},
			"primaryColor":    {Type: genai.TypeString},
			"secondaryColor":  {Type: genai.TypeString},
			"accentColor":     {Type: genai.TypeString},
			"backgroundColor": {Type: genai.TypeString},
			"textColor":       {Type: genai.TypeString},
			"headingFont":     {Type: genai.TypeString},
			"bodyFont":        {Type: genai.TypeString},
			"rationale":       {Type: genai.TypeString},
		},
		Required: []string{"name", "primaryColor", "backgroundColor", "textColor", "headingFont", "bodyFont"},
	}
}

func themeOptionsSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"themes": {Type: genai.TypeArray, Items: themeSchema()},
		},
		Required: []string{"themes"},
	}
}

func fontOptionsSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"fonts": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":        {Type: genai.TypeString},
						"headingFont": {Type: genai.TypeString},
						"bodyFont":    {Type: genai.TypeString},
						"rationale":   {Type: genai.TypeString},
					},
					Required: []string{"name", "headingFont", "bodyFont"},
				},
			},
		},
		Required: []string{"fonts"},
	}
}

func studyGuideSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": {Type: genai.TypeString},
			"sections": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"heading":   {Type: genai.TypeString},
						"keyPoints": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
						"summary":   {Type: genai.TypeString},
					},
					Required: []string{"heading", "keyPoints"},
				},
			},
		},
		Required: []string{"title", "sections"},
	}
}

func quizSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": {Type: genai.TypeString},
			"questions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"question":    {Type: genai.TypeString},
						"options":     {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
						"answerIndex": {Type: genai.TypeInteger},
						"explanation": {Type: genai.TypeString},
					},
					Required: []string{"question", "options", "answerIndex"},
				},
			},
		},
		Required: []string{"title", "questions"},
	}
}

func courseSummarySchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":         {Type: genai.TypeString},
			"overview":      {Type: genai.TypeString},
			"learningGoals": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"modules":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		},
		Required: []string{"title", "overview", "learningGoals", "modules"},
	}
}

func reviewSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"issues": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"index":     {Type: genai.TypeInteger},
						"reason":    {Type: genai.TypeString},
						"corrected": slideSchema(),
					},
					Required: []string{"index", "reason"},
				},
			},
		},
		Required: []string{"issues"},
	}
}

func infographicSelectSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"index":  {Type: genai.TypeInteger},
			"reason": {Type: genai.TypeString},
		},
		Required: []string{"index", "reason"},
	}
}

func analysisSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"freshnessScore":   {Type: genai.TypeInteger},
			"engagementScore":  {Type: genai.TypeInteger},
			"freshnessIssues":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"engagementIssues": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"summary":          {Type: genai.TypeString},
		},
		Required: []string{"freshnessScore", "engagementScore", "freshnessIssues", "engagementIssues", "summary"},
	}
}

func transformationsSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"transformations": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"sectionId":     {Type: genai.TypeString},
						"originalType":  {Type: genai.TypeString, Enum: types.SectionTypes()},
						"suggestedType": {Type: genai.TypeString, Enum: types.VisualTypes()},
						"rationale":     {Type: genai.TypeString},
						"preview":       {Type: genai.TypeString},
					},
					Required: []string{"sectionId", "originalType", "suggestedType"},
				},
			},
		},
		Required: []string{"transformations"},
	}
}
