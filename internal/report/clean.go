// Package report builds the downloadable PDF and JSON exports.
package report

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// lookalikes maps typographic characters to ASCII stand-ins the PDF core
// fonts can show.
var lookalikes = strings.NewReplacer(
	"–", "-",
	"—", "-",
	"“", `"`,
	"”", `"`,
	"’", "'",
	"•", "-",
	"→", "->",
	"…", "...",
	"©", "(c)",
)

// CleanText replaces typographic look-alikes, then drops every character
// outside ISO-8859-1.
func CleanText(s string) string {
	return StripNonLatin1(lookalikes.Replace(s))
}

// StripNonLatin1 removes characters that have no ISO-8859-1 encoding,
// such as emoji and CJK text.
func StripNonLatin1(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if _, ok := charmap.ISO8859_1.EncodeRune(r); ok {
			b.WriteRune(r)
		}
	}
	return b.String()
}
