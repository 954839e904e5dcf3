// Package genai wraps the Gemini SDK: JSON generation against typed response
// schemas, image generation, file upload with bounded state polling, and
// resolution of client file references into request parts.
package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Model names by task complexity.
const (
	ModelDefault = "gemini-2.5-flash"
	ModelLite    = "gemini-2.5-flash-lite"
	ModelImage   = "gemini-2.0-flash-preview-image-generation"
)

// ErrModelContract indicates the model's output violated the requested
// response contract (no text part, or text that is not the JSON the schema
// demanded). Handlers surface it as 502.
var ErrModelContract = errors.New("model output violates response contract")

// GenerateRequest describes one text/JSON generation call.
type GenerateRequest struct {
	Model           string // defaults to ModelDefault
	Parts           []genai.Part
	System          string
	Schema          *genai.Schema
	Temperature     float32
	MaxOutputTokens int32
	Grounding       bool // attach the search-grounding tool
}

// Result is the text output of a generation call plus token accounting.
type Result struct {
	Text        string
	Model       string
	TotalTokens int
}

// Generator is the interface handlers depend on; tests substitute stubs.
type Generator interface {
	GenerateJSON(ctx context.Context, req GenerateRequest) (*Result, error)
	GenerateImage(ctx context.Context, prompt string, baseImage []byte) (string, error)
}

// Client is the Gemini-backed Generator.
type Client struct {
	client *genai.Client
}

// NewClient creates a Gemini client. The API key is required.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	cli, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: cli}, nil
}

// safetySettings are attached to every generation call.
var safetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockOnlyHigh},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockOnlyHigh},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockOnlyHigh},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockOnlyHigh},
}

// GenerateJSON runs one generation call and returns the text of the first
// candidate. When Grounding is set the response schema is not attached (the
// API rejects a schema combined with the search tool); callers must request
// JSON in the prompt and parse defensively.
func (c *Client) GenerateJSON(ctx context.Context, req GenerateRequest) (*Result, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = ModelDefault
	}

	model := c.client.GenerativeModel(modelName)
	model.SafetySettings = safetySettings
	model.SetTemperature(req.Temperature)
	if req.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(req.MaxOutputTokens)
	}
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	if req.Grounding {
		model.Tools = []*genai.Tool{{GoogleSearchRetrieval: &genai.GoogleSearchRetrieval{}}}
	} else if req.Schema != nil {
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = req.Schema
	}

	resp, err := model.GenerateContent(ctx, req.Parts...)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractText(resp)
	if err != nil {
		return nil, err
	}

	result := &Result{Text: text, Model: modelName}
	if resp.UsageMetadata != nil {
		result.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return result, nil
}

// extractText joins the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", ErrModelContract)
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no content in response", ErrModelContract)
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: no text parts in response", ErrModelContract)
	}
	return strings.Join(parts, ""), nil
}

// CleanJSONBlock removes markdown code fences from model output. Models wrap
// JSON in ```json ... ``` blocks even when instructed not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip a language identifier on the first line.
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	return text
}

// Close releases the underlying SDK client.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
