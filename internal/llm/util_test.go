package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock_MarkdownCodeBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "code block with language",
			input:    "```javascript\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "plain JSON",
			input:    `{"key": "value"}`,
			expected: `{"key": "value"}`,
		},
		{
			name:     "surrounding whitespace",
			input:    "\n\n  {\"key\": \"value\"}  \n",
			expected: `{"key": "value"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{
			name:     "preamble before object",
			input:    "As requested, here is the JSON:\n{\"name\": \"Jane\"}",
			expected: `{"name": "Jane"}`,
			ok:       true,
		},
		{
			name:     "trailing commentary",
			input:    "{\"name\": \"Jane\", \"skills\": \"Go\"}\nLet me know if you need more.",
			expected: `{"name": "Jane", "skills": "Go"}`,
			ok:       true,
		},
		{
			name:     "fenced with nested object",
			input:    "```json\n{\"a\": {\"b\": 1}}\n```",
			expected: `{"a": {"b": 1}}`,
			ok:       true,
		},
		{
			name:  "no object",
			input: "name: Jane",
			ok:    false,
		},
		{
			name:  "reversed braces",
			input: "} oops {",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}
