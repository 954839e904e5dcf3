package genai

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSONBlock_JSONFence(t *testing.T) {
	in := "```json\n{\"a\": 1}\n```"
	assert.Equal(t, `{"a": 1}`, CleanJSONBlock(in))
}

func TestCleanJSONBlock_GenericFence(t *testing.T) {
	in := "```\n{\"a\": 1}\n```"
	assert.Equal(t, `{"a": 1}`, CleanJSONBlock(in))
}

func TestCleanJSONBlock_LanguageIdentifier(t *testing.T) {
	in := "```javascript\n{\"a\": 1}\n```"
	assert.Equal(t, `{"a": 1}`, CleanJSONBlock(in))
}

func TestCleanJSONBlock_PlainJSON(t *testing.T) {
	in := `{"a": 1}`
	assert.Equal(t, in, CleanJSONBlock(in))
}

func TestDecodeBase64_Plain(t *testing.T) {
	got, err := DecodeBase64(base64.StdEncoding.EncodeToString([]byte("hello")))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}

func TestDecodeBase64_DataURL(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte{0x89, 0x50, 0x4e, 0x47})
	got, err := DecodeBase64("data:image/png;base64," + raw)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, got)
}

func TestDecodeBase64_Invalid(t *testing.T) {
	_, err := DecodeBase64("!!not base64!!")
	assert.Error(t, err)
}

func TestValidateOutput_Findings(t *testing.T) {
	valid := []byte(`{"findings":[{"category":"outdated","severity":"high","title":"t","description":"d"}]}`)
	require.NoError(t, ValidateOutput("findings.json", valid))

	badCategory := []byte(`{"findings":[{"category":"stale","severity":"high","title":"t","description":"d"}]}`)
	err := ValidateOutput("findings.json", badCategory)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelContract)

	missingField := []byte(`{"findings":[{"category":"outdated","severity":"high","title":"t"}]}`)
	assert.ErrorIs(t, ValidateOutput("findings.json", missingField), ErrModelContract)
}

func TestValidateOutput_Transformations(t *testing.T) {
	valid := []byte(`{"transformations":[{"sectionId":"s1","originalType":"bullets","suggestedType":"timeline"}]}`)
	require.NoError(t, ValidateOutput("transformations.json", valid))

	badType := []byte(`{"transformations":[{"sectionId":"s1","originalType":"bullets","suggestedType":"wordcloud"}]}`)
	assert.ErrorIs(t, ValidateOutput("transformations.json", badType), ErrModelContract)
}

func TestValidateOutput_UnknownSchema(t *testing.T) {
	err := ValidateOutput("nope.json", []byte(`{}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrModelContract)
}
