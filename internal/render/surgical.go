package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ashureev/kneeoa/internal/domain"
)

var (
	scenarioPattern       = regexp.MustCompile(`Scenario (\d+):`)
	recommendationPattern = regexp.MustCompile(`(Total knee arthroplasty|Unicompartmental knee arthroplasty.*?|Realignment Osteotomy.*?)\s*(Appropriate|May Be Appropriate|Rarely Appropriate)\s*(\d)`)
)

// UnknownScenario is reported when a guideline names no scenario.
const UnknownScenario = "Unknown"

var scenarioTitles = map[string]string{
	"564": "Severe Functional Limitation",
	"225": "Moderate Functional Limitation with Mechanical Symptoms",
	"482": "Younger Patient with Single-Compartment Disease",
}

// ScenarioID returns the number following "Scenario " in a guideline.
func ScenarioID(guideline string) string {
	m := scenarioPattern.FindStringSubmatch(guideline)
	if m == nil {
		return UnknownScenario
	}
	return m[1]
}

// ScenarioTitle maps a scenario id to its display title.
func ScenarioTitle(id string) string {
	if title, ok := scenarioTitles[id]; ok {
		return title
	}
	return "Clinical Scenario"
}

// span is a pair of boundary phrases delimiting one guideline section.
type span struct {
	start, end string
}

// Section boundaries, tried in order until one yields text.
var (
	clinicalSpans     = []span{{"The patient reports", "Demonstrates"}, {"Experiences", "has limited"}}
	physicalSpans     = []span{{"Demonstrates", "Shows"}, {"has limited", "shows"}}
	radiographicSpans = []span{{"Shows", "Total"}, {"exhibits", "Total"}}
)

// extractSection returns the trimmed text between start and the next end
// after it, or "" when either phrase is missing.
func extractSection(text, start, end string) string {
	i := strings.Index(text, start)
	if i < 0 {
		return ""
	}
	j := strings.Index(text[i:], end)
	if j < 0 {
		return ""
	}
	from, to := i+len(start), i+j
	if to < from {
		return ""
	}
	return strings.TrimSpace(text[from:to])
}

func extractFirst(text string, spans []span) string {
	for _, s := range spans {
		if out := extractSection(text, s.start, s.end); out != "" {
			return out
		}
	}
	return ""
}

// Recommendation is one appropriateness rating parsed from a guideline.
type Recommendation struct {
	Procedure string
	Rating    string
	Score     string
}

// Recommendations lists every procedure rating found in a guideline.
func Recommendations(guideline string) []Recommendation {
	matches := recommendationPattern.FindAllStringSubmatch(guideline, -1)
	out := make([]Recommendation, 0, len(matches))
	for _, m := range matches {
		out = append(out, Recommendation{Procedure: m[1], Rating: m[2], Score: m[3]})
	}
	return out
}

// Medication advisory notes, first match on the medication name wins.
var medicationNotes = []struct {
	keyword string
	note    string
}{
	{"Ibuprofen", "Monitor for GI effects; take with food"},
	{"Acetaminophen", "Not to exceed 3000 mg daily"},
	{"Corticosteroids", "Consider after failed oral analgesics"},
}

// MedicationNote returns the advisory note for a medication name.
func MedicationNote(name string) string {
	for _, n := range medicationNotes {
		if strings.Contains(name, n.keyword) {
			return n.note
		}
	}
	return ""
}

// TailoringNote closes the medication table.
const TailoringNote = "Note: Medication regimen should be tailored based on patient comorbidities, concomitant medications, and individual response to therapy."

// SurgicalPharma renders the guideline summary block and the medication
// table block.
func SurgicalPharma(plan domain.SurgicalPharmaPlan) []Block {
	var g strings.Builder
	g.WriteString("#### Clinical Guideline Analysis\n\n### Matched Guidelines Summary\n\n")

	for _, item := range plan.MatchedGuidelines {
		text := item.Guideline
		id := ScenarioID(text)

		fmt.Fprintf(&g, "**Guideline %s: %s**\n\n", id, ScenarioTitle(id))
		fmt.Fprintf(&g, "- **Clinical Presentation:** %s\n", extractFirst(text, clinicalSpans))
		fmt.Fprintf(&g, "- **Physical Findings:** %s\n", extractFirst(text, physicalSpans))
		fmt.Fprintf(&g, "- **Radiographic Features:** %s\n\n", extractFirst(text, radiographicSpans))
		g.WriteString("**Recommendations:**\n\n")
		for _, rec := range Recommendations(text) {
			fmt.Fprintf(&g, "- %s: %s (%s/9)\n", rec.Procedure, rec.Rating, rec.Score)
		}
		g.WriteString("\n")
	}

	var m strings.Builder
	m.WriteString("#### Pharmacological Management Plan\n\n")
	m.WriteString("| Medication | Dosage | Administration Schedule | Notes |\n")
	m.WriteString("|------------|--------|-------------------------|-------|\n")
	for _, med := range plan.MedicationPlan {
		fmt.Fprintf(&m, "| %s | %s | %s | %s |\n",
			tableCell(med.Name), tableCell(med.Dosage), tableCell(med.Frequency), MedicationNote(med.Name))
	}
	m.WriteString("\n" + TailoringNote + "\n")

	return []Block{
		newBlock(SurgicalPharmaAgent, StyleSurgical, g.String()),
		newBlock(SurgicalPharmaAgent, StylePharma, m.String()),
	}
}

// tableCell keeps a value on one table row.
func tableCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
