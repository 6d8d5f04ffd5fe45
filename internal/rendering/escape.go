package rendering

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// EscapeRTF escapes text for an RTF body.
// Control characters \ { } are backslash-escaped, newlines become \line,
// and characters outside 7-bit ASCII are written as \uN? escapes.
func EscapeRTF(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) * 2)

	for _, r := range text {
		switch {
		case r == '\\':
			result.WriteString(`\\`)
		case r == '{':
			result.WriteString(`\{`)
		case r == '}':
			result.WriteString(`\}`)
		case r == '\n':
			result.WriteString(`\line `)
		case r == '\t':
			result.WriteString(`\tab `)
		case r == '\r':
			// dropped; \n carries the break
		case r < 0x80:
			result.WriteRune(r)
		case r <= 0xFFFF:
			writeRTFUnicode(&result, r)
		default:
			// RTF only has 16-bit escapes, so astral runes go out as a surrogate pair
			r -= 0x10000
			writeRTFUnicode(&result, 0xD800+(r>>10))
			writeRTFUnicode(&result, 0xDC00+(r&0x3FF))
		}
	}

	return result.String()
}

// writeRTFUnicode writes \uN? where N is the signed 16-bit value of r
func writeRTFUnicode(b *strings.Builder, r rune) {
	fmt.Fprintf(b, `\u%d?`, int16(uint16(r)))
}

// escapeXML escapes character data for WordprocessingML parts
func escapeXML(text string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(text))
	return buf.String()
}
