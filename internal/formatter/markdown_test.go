package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name: "Basic table formatting",
			input: `
| Header 1 | Header 2 |
| --- | --- |
| val 1 | val 2 |`,
			expected: `
| Header 1 | Header 2 |
| -------- | -------- |
| val 1    | val 2    |`,
		},
		{
			name: "Fix excessive dashes",
			input: `
| Col A | Col B |
| ---------------------- | ---------------------------------- |
| A | B |`,
			expected: `
| Col A | Col B |
| ----- | ----- |
| A     | B     |`,
		},
		{
			name: "Mixed content",
			input: `# Title

| H1 | H2 |
| -- | -- |
| v1 | v2 |

Text after table.`,
			expected: `# Title

| H1  | H2  |
| --- | --- |
| v1  | v2  |

Text after table.`,
		},
		{
			name: "Wide runes count double",
			input: `| 国家 | n |
| --- | --- |
| Perú | 1 |`,
			expected: `| 国家 | n   |
| ---- | --- |
| Perú | 1   |`,
		},
		{
			name: "Ragged rows are padded",
			input: `| a | b | c |
| --- | --- | --- |
| 1 |`,
			expected: `| a   | b   | c   |
| --- | --- | --- |
| 1   |     |     |`,
		},
		{
			name:     "Pipe lines without separator are untouched",
			input:    "| not | a table |\n| really | no |",
			expected: "| not | a table |\n| really | no |",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatMarkdown(tt.input))
		})
	}
}

func TestFormatMarkdown_DropsMetadata(t *testing.T) {
	input := "text\n\n<!-- METADATA_START\nHASH: abc\nMETADATA_END -->\n"

	got := FormatMarkdown(input)
	assert.Equal(t, "text", got)
	assert.False(t, strings.Contains(got, "METADATA"))
}
