package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_KnownPrompt(t *testing.T) {
	p, err := Get("slides.json", "scan")
	require.NoError(t, err)
	assert.Contains(t, p, "{{.Content}}")
	assert.Contains(t, p, "broken-reference")
}

func TestGet_UnknownKey(t *testing.T) {
	_, err := Get("slides.json", "doesNotExist")
	require.Error(t, err)
}

func TestGet_UnknownFile(t *testing.T) {
	_, err := Get("missing.json", "scan")
	require.Error(t, err)
}

func TestFormat(t *testing.T) {
	out := Format("Deck about {{.Topic}} for {{.Sector}}", map[string]string{
		"Topic":  "forklift safety",
		"Sector": "logistics",
	})
	assert.Equal(t, "Deck about forklift safety for logistics", out)
}

func TestFormat_MissingKeyLeftIntact(t *testing.T) {
	out := Format("x {{.Missing}} y", map[string]string{"Other": "z"})
	assert.Equal(t, "x {{.Missing}} y", out)
}

func TestAllPromptFilesParse(t *testing.T) {
	for _, f := range []string{"slides.json", "analysis.json", "regulatory.json", "visual.json"} {
		prompts, err := loadFile(f)
		require.NoError(t, err, f)
		assert.NotEmpty(t, prompts, f)
	}
}
