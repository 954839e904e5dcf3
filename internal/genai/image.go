package genai

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/google/generative-ai-go/genai"
)

// GenerateImage produces an image for prompt, optionally conditioned on a
// base image, and returns it as a PNG data URL. Returns ErrModelContract
// when the model answers with text instead of an image.
func (c *Client) GenerateImage(ctx context.Context, prompt string, baseImage []byte) (string, error) {
	model := c.client.GenerativeModel(ModelImage)
	model.SafetySettings = safetySettings

	parts := []genai.Part{genai.Text(prompt)}
	if len(baseImage) > 0 {
		parts = append(parts, genai.Blob{MIMEType: "image/png", Data: baseImage})
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate image: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: no candidates in image response", ErrModelContract)
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if blob, ok := part.(genai.Blob); ok {
			mime := blob.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			encoded := base64.StdEncoding.EncodeToString(blob.Data)
			return fmt.Sprintf("data:%s;base64,%s", mime, encoded), nil
		}
	}

	return "", fmt.Errorf("%w: model returned text instead of an image", ErrModelContract)
}
