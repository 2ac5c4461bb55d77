package encoder

import "strings"

// Escape escapes s for use inside a single-quoted MySQL string literal.
// Every input byte expands to at most two output bytes, and the builder
// is grown to that bound before writing.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(2 * len(s))
	writeEscaped(&b, s)
	return b.String()
}

func writeEscaped(b *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case 0:
			b.WriteString(`\0`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case 0x1a:
			b.WriteString(`\Z`)
		case '\\', '\'', '"':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
}

// quoteIdent quotes a table identifier with backticks, doubling embedded backticks
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
