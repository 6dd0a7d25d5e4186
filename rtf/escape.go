package rtf

import (
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

// escape returns s as RTF text. Characters outside ASCII are written as
// \'hh when Windows-1252 has them and as \uN? otherwise. Newlines and
// tabs become \line and \tab.
func escape(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\\' || r == '{' || r == '}':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString(`\line `)
		case r == '\t':
			sb.WriteString(`\tab `)
		case r == '\r':
		case r < 0x20:
			// Other control characters have no RTF meaning.
		case r < 0x80:
			sb.WriteRune(r)
		default:
			if b, ok := charmap.Windows1252.EncodeRune(r); ok {
				sb.WriteString(`\'`)
				sb.WriteString(hex2(b))
				continue
			}
			if r1, r2 := utf16.EncodeRune(r); r1 != '\uFFFD' {
				unicodeEscape(&sb, r1)
				unicodeEscape(&sb, r2)
				continue
			}
			unicodeEscape(&sb, r)
		}
	}
	return sb.String()
}

// unicodeEscape writes \uN? with N as a signed 16-bit value.
func unicodeEscape(sb *strings.Builder, r rune) {
	n := int(r)
	if n > 0x7FFF {
		n -= 0x10000
	}
	sb.WriteString(`\u`)
	sb.WriteString(strconv.Itoa(n))
	sb.WriteByte('?')
}

func hex2(b byte) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[b>>4], digits[b&0x0f]})
}
