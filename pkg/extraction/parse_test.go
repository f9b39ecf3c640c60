package extraction

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tterrors "github.com/tastetrail/tastetrail/pkg/errors"
)

func TestParseStructuredOutput_StrictJSON(t *testing.T) {
	out, err := ParseStructuredOutput(`{"restaurants":[{"name":"Pasta House","confidence_score":0.9}]}`)
	require.NoError(t, err)
	require.Len(t, out.Restaurants, 1)
	assert.Equal(t, "Pasta House", out.Restaurants[0].Name)
}

func TestParseStructuredOutput_MarkdownFences(t *testing.T) {
	raw := "```json\n{\"restaurants\":[{\"name\":\"Taco Stand\"}]}\n```"
	out, err := ParseStructuredOutput(raw)
	require.NoError(t, err)
	require.Len(t, out.Restaurants, 1)
	assert.Equal(t, "Taco Stand", out.Restaurants[0].Name)
}

func TestParseStructuredOutput_SurroundingProse(t *testing.T) {
	raw := `Here are the results you asked for:
{"restaurants":[{"name":"Sushi Go","context":"the \"best\" nigiri {truly}"}]}
Let me know if you need anything else.`
	out, err := ParseStructuredOutput(raw)
	require.NoError(t, err)
	require.Len(t, out.Restaurants, 1)
	assert.Equal(t, "Sushi Go", out.Restaurants[0].Name)
	require.NotNil(t, out.Restaurants[0].Context)
	assert.Contains(t, *out.Restaurants[0].Context, "{truly}")
}

func TestParseStructuredOutput_EmptyRestaurants(t *testing.T) {
	out, err := ParseStructuredOutput(`{"restaurants": []}`)
	require.NoError(t, err)
	assert.Empty(t, out.Restaurants)
}

func TestParseStructuredOutput_Unrecoverable(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"prose only", "I could not find any restaurants."},
		{"unbalanced braces", `{"restaurants": [`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStructuredOutput(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tterrors.ErrExtractionParse))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSONObject(`noise {"a":1} trailing`))
	assert.Equal(t, `{"a":{"b":2}}`, extractJSONObject(`{"a":{"b":2}} {"c":3}`))
	assert.Equal(t, `{"s":"brace } in string"}`, extractJSONObject(`{"s":"brace } in string"}`))
	assert.Equal(t, "", extractJSONObject("no json here"))
	assert.Equal(t, "", extractJSONObject(`{"never": "closed"`))
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences(`{"a":1}`))
}
