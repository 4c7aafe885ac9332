// Package render turns agent plan documents into display blocks and drives
// the staged multi-agent reveal on the therapy page.
//
// Every renderer is a pure function of its plan. Block markdown is converted
// with goldmark and sanitized before it is handed to templates.
package render

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Style is the visual category of a block.
type Style string

const (
	StyleExercise   Style = "exercise"
	StyleSurgical   Style = "surgical"
	StylePharma     Style = "pharma"
	StyleNutrition  Style = "nutrition"
	StylePsychology Style = "psychology"
	StyleDecision   Style = "decision"
)

// Agent display names.
const (
	ExerciseAgent            = "A. Exercise Prescriptionist Agent"
	SurgicalPharmaAgent      = "B. Surgical & Pharmacological Specialist Agent"
	NutritionPsychologyAgent = "C. Nutritional & Psychological Specialist Agent"
	ClinicalIntegrationAgent = "D. Clinical Decision-Making Agent"
	decisionRole             = "🧩 Clinical Decision-Making Agent"
)

// Block is one speech bubble attributed to an agent.
type Block struct {
	Agent    string        `json:"agent"`
	Style    Style         `json:"style"`
	Markdown string        `json:"markdown"`
	HTML     template.HTML `json:"html"`
}

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	policy = bluemonday.UGCPolicy()
)

// newBlock converts md and returns the finished block.
func newBlock(agent string, style Style, md string) Block {
	return Block{
		Agent:    agent,
		Style:    style,
		Markdown: md,
		HTML:     ToHTML(md),
	}
}

// ToHTML converts markdown to sanitized HTML. Conversion failures fall back
// to the escaped source.
func ToHTML(md string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return template.HTML("<pre>" + template.HTMLEscapeString(md) + "</pre>")
	}
	return template.HTML(policy.SanitizeBytes(buf.Bytes()))
}
