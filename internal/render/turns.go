package render

import (
	"html/template"
	"strings"

	"github.com/ashureev/kneeoa/internal/domain"
)

// Turns renders chat turns as bubbles: patient turns right-aligned in green,
// everything else left-aligned in grey. Content is escaped, never parsed.
func Turns(turns []domain.Turn) template.HTML {
	var b strings.Builder
	for _, t := range turns {
		if t.IsUser() {
			b.WriteString(`<div class="turn turn-user"><div class="bubble bubble-user">🧍 `)
		} else {
			b.WriteString(`<div class="turn turn-assistant"><div class="bubble bubble-assistant">👨‍⚕️ `)
		}
		b.WriteString(template.HTMLEscapeString(t.Content))
		b.WriteString("</div></div>\n")
	}
	return template.HTML(b.String())
}
