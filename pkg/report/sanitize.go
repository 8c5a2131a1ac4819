package report

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var typographic = strings.NewReplacer(
	"–", "-", // en dash
	"—", "-", // em dash
	"‒", "-",
	"―", "-",
	"−", "-",
	"‘", "'",
	"’", "'",
	"‚", "'",
	"′", "'",
	"“", "\"",
	"”", "\"",
	"„", "\"",
	"″", "\"",
	"…", "...",
	"•", "*",
	"·", "*",
	" ", " ",
)

// SanitizeText reduces s to printable ASCII so it renders with the core PDF fonts.
func SanitizeText(s string) string {
	s = typographic.Replace(s)

	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(stripMarks, s); err == nil {
		s = stripped
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			continue
		case r > unicode.MaxASCII:
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
