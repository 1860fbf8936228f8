package repair

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json fence",
			input:    "```json\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "bare fence",
			input:    "```\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "no fence",
			input:    `{"a": 1}`,
			expected: `{"a": 1}`,
		},
		{
			name:     "surrounding whitespace",
			input:    "  {\"a\": 1}\n",
			expected: `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripFences(tt.input))
		})
	}
}

func TestExtractObject(t *testing.T) {
	body, err := ExtractObject(`Here is your result: {"transactions": []} Hope that helps!`)
	require.NoError(t, err)
	assert.Equal(t, `{"transactions": []}`, body)

	_, err = ExtractObject("sorry, I cannot help with that")
	assert.ErrorIs(t, err, ErrNoJSON)

	_, err = ExtractObject("} backwards {")
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestStructural(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "trailing comma before brace",
			input:    `{"a": 1,}`,
			expected: `{"a": 1}`,
		},
		{
			name:     "trailing comma before bracket",
			input:    `{"a": [1, 2,]}`,
			expected: `{"a": [1, 2]}`,
		},
		{
			name:     "missing comma between objects",
			input:    `{"a": [{"x": 1} {"x": 2}]}`,
			expected: `{"a": [{"x": 1},{"x": 2}]}`,
		},
		{
			name:     "empty value filled with null",
			input:    `{"a": , "b": 2}`,
			expected: `{"a": null, "b": 2}`,
		},
		{
			name:     "duplicate commas collapsed",
			input:    `{"a": [1,, 2,,, 3]}`,
			expected: `{"a": [1, 2, 3]}`,
		},
		{
			name:     "already valid input unchanged",
			input:    `{"a": 1, "b": [2, 3]}`,
			expected: `{"a": 1, "b": [2, 3]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Structural(tt.input))
		})
	}
}

func TestReconstructBlocks(t *testing.T) {
	input := `{
  "transactions": [
    {
      "date": "2025-01-01"
      "description": "Coffee Shop"
      "amount": -4.50
      "category": "Office costs"
    },
    {
      "date": "2025-01-02",
      "description": "Train",
      "amount": -12,
      "category": "Travel costs",
      "confidence": 80
    }
  ]
}`

	blocks := ReconstructBlocks(input)
	require.Len(t, blocks, 2)

	assert.Equal(t, "2025-01-01", blocks[0]["date"])
	assert.Equal(t, "Coffee Shop", blocks[0]["description"])
	assert.Equal(t, -4.50, blocks[0]["amount"])

	assert.Equal(t, "Train", blocks[1]["description"])
	assert.Equal(t, float64(80), blocks[1]["confidence"])
}

func TestReconstructBlocksEmpty(t *testing.T) {
	assert.Empty(t, ReconstructBlocks("no braces at all"))
	assert.Empty(t, ReconstructBlocks(""))
}

func TestCoerceValue(t *testing.T) {
	assert.Equal(t, "text", coerceValue(`"text"`))
	assert.Equal(t, -12.5, coerceValue("-12.5"))
	assert.Equal(t, true, coerceValue("true"))
	assert.Nil(t, coerceValue("null"))
	assert.Equal(t, `quoted "inner"`, coerceValue(`"quoted \"inner\""`))
}
