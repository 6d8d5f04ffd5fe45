package rendering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeRTF_EmptyString(t *testing.T) {
	assert.Equal(t, "", EscapeRTF(""))
}

func TestEscapeRTF_NoSpecialCharacters(t *testing.T) {
	text := "This is normal text with no special characters"
	assert.Equal(t, text, EscapeRTF(text))
}

func TestEscapeRTF(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "backslash", input: `a\b`, want: `a\\b`},
		{name: "braces", input: "text{with}braces", want: `text\{with\}braces`},
		{name: "newline", input: "a\nb", want: `a\line b`},
		{name: "crlf", input: "a\r\nb", want: `a\line b`},
		{name: "tab", input: "a\tb", want: `a\tab b`},
		{name: "latin1", input: "café", want: `caf\u233?`},
		{name: "cjk", input: "张", want: `\u24352?`},
		{name: "high bmp is negative", input: "！", want: `\u-255?`},
		{name: "astral rune uses surrogates", input: "😀", want: `\u-10179?\u-8704?`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeRTF(tt.input))
		})
	}
}

func TestEscapeXML(t *testing.T) {
	assert.Equal(t, "R&amp;D &lt;team&gt;", escapeXML("R&D <team>"))
}
