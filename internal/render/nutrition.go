package render

import (
	"fmt"
	"strings"

	"github.com/ashureev/kneeoa/internal/domain"
)

// matcher classifies one free-text content line.
type matcher struct {
	exact  []string // case-sensitive substrings
	folded []string // substrings of the lower-cased line
}

func (m matcher) matches(line string) bool {
	for _, kw := range m.exact {
		if strings.Contains(line, kw) {
			return true
		}
	}
	lower := strings.ToLower(line)
	for _, kw := range m.folded {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// cannedSection is a fixed explanatory paragraph gated by a matcher.
type cannedSection struct {
	title   string
	match   matcher
	bullets []string
}

func (c cannedSection) write(b *strings.Builder, n int) {
	fmt.Fprintf(b, "%d. **%s**\n", n, c.title)
	for _, bullet := range c.bullets {
		fmt.Fprintf(b, "   - %s\n", bullet)
	}
}

// firstMatch returns the index of the first section matching line, or -1.
func firstMatch(sections []cannedSection, line string) int {
	for i, s := range sections {
		if s.match.matches(line) {
			return i
		}
	}
	return -1
}

var nutritionStrategies = []cannedSection{
	{
		title: "Anti-inflammatory Focus",
		match: matcher{exact: []string{"Anti-inflammatory", "Adequacy"}},
		bullets: []string{
			"Incorporate omega-3 rich foods (fatty fish, walnuts, flaxseeds)",
			"Increase consumption of antioxidant-rich leafy greens",
			"Integrate nuts and seeds for micronutrient support",
			"Purpose: Reduce joint inflammation and support tissue repair",
		},
	},
	{
		title: "Macronutrient Optimization",
		match: matcher{exact: []string{"macronutrient", "Balance"}},
		bullets: []string{
			"Ensure adequate protein intake to support muscle maintenance",
			"Balance complex carbohydrates for sustained energy",
			"Include healthy fats to support joint lubrication",
			"Purpose: Enhance musculoskeletal strength and joint function",
		},
	},
	{
		title: "Weight Management",
		match: matcher{folded: []string{"calorie"}},
		bullets: []string{
			"Implement portion awareness techniques",
			"Monitor caloric balance through guided food journaling",
			"Adjust intake based on activity levels and rehabilitation phases",
			"Purpose: Reduce mechanical stress on knee joints",
		},
	},
}

var psychologyApproaches = []cannedSection{
	{
		title: "Motivational Interviewing",
		match: matcher{exact: []string{"Motivational"}},
		bullets: []string{
			"Explore personal values related to mobility and function",
			"Resolve ambivalence about rehabilitation commitment",
			"Develop intrinsic motivation for consistent exercise adherence",
			"Purpose: Strengthen commitment to rehabilitation protocols",
		},
	},
	{
		title: "Cognitive Restructuring",
		match: matcher{exact: []string{"CBT"}},
		bullets: []string{
			"Identify and challenge maladaptive thoughts about pain and recovery",
			"Transform catastrophizing patterns into realistic perspectives",
			"Develop confidence in functional improvement",
			"Purpose: Reduce pain-related fear and enhance rehabilitation engagement",
		},
	},
	{
		title: "Digital Mindfulness Integration",
		match: matcher{folded: []string{"mindfulness"}},
		bullets: []string{
			"Implement scheduled mindfulness practice through mobile notifications",
			"Provide guided pain-specific meditation recordings",
			"Track stress levels in relation to symptom fluctuations",
			"Purpose: Enhance stress management and improve pain tolerance",
		},
	},
}

// CoordinationNote closes the psychology block.
const CoordinationNote = "*Note: Both nutritional and psychological interventions will be coordinated with physical rehabilitation to ensure comprehensive care integration.*"

// NutritionStrategies reports which nutrition strategies the content
// triggers, in fixed order.
func NutritionStrategies(content []string) []string {
	hit := make([]bool, len(nutritionStrategies))
	for _, line := range content {
		if i := firstMatch(nutritionStrategies, line); i >= 0 {
			hit[i] = true
		}
	}
	var out []string
	for i, s := range nutritionStrategies {
		if hit[i] {
			out = append(out, s.title)
		}
	}
	return out
}

// approachHit is a psychology approach and the 1-based position of the
// first content line that triggered it.
type approachHit struct {
	section  cannedSection
	position int
}

func psychologyHits(content []string) []approachHit {
	seen := make(map[int]bool)
	var hits []approachHit
	for pos, line := range content {
		i := firstMatch(psychologyApproaches, line)
		if i < 0 || seen[i] {
			continue
		}
		seen[i] = true
		hits = append(hits, approachHit{section: psychologyApproaches[i], position: pos + 1})
	}
	return hits
}

// PsychologyApproaches reports the triggered approaches in the order their
// first matching line appears.
func PsychologyApproaches(content []string) []string {
	hits := psychologyHits(content)
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.section.title
	}
	return out
}

// NutritionPsychology renders the nutrition block and the psychology block.
func NutritionPsychology(plan domain.NutritionPsychologyPlan) []Block {
	n := plan.Nutrition
	var nb strings.Builder
	nb.WriteString("#### Nutritional Intervention Plan\n\n")
	fmt.Fprintf(&nb, "**Goal:** %s\n\n", n.Goal)
	nb.WriteString("**Delivery Method:** Personalized one-on-one counseling supplemented with mobile application reminders\n\n")
	nb.WriteString("**Program Structure:**\n\n")
	nb.WriteString("- **Initial Phase:** Weekly consultations (first 6 weeks)\n")
	nb.WriteString("- **Maintenance Phase:** Bi-weekly check-ins\n")
	fmt.Fprintf(&nb, "- **Total Duration:** %s comprehensive program\n\n", n.Duration)
	nb.WriteString("**Key Nutritional Strategies:**\n\n")

	hit := make([]bool, len(nutritionStrategies))
	for _, line := range n.Content {
		if i := firstMatch(nutritionStrategies, line); i >= 0 {
			hit[i] = true
		}
	}
	for i, s := range nutritionStrategies {
		if hit[i] {
			s.write(&nb, i+1)
		}
	}

	p := plan.Psychology
	var pb strings.Builder
	pb.WriteString("#### Psychological Support\n\n")
	fmt.Fprintf(&pb, "**Goal:** %s\n\n", p.Goal)
	pb.WriteString("**Delivery Method:** Tele-health Cognitive Behavioral Therapy with structured daily practice components\n\n")
	pb.WriteString("**Program Structure:**\n\n")
	pb.WriteString("- **Intensive Phase:** Weekly sessions (first 8 weeks)\n")
	pb.WriteString("- **Consolidation Phase:** Bi-weekly sessions\n")
	fmt.Fprintf(&pb, "- **Total Duration:** %s comprehensive program\n\n", p.Duration)
	pb.WriteString("**Evidence-Based Psychological Approaches:**\n\n")
	for _, h := range psychologyHits(p.Content) {
		h.section.write(&pb, h.position)
	}
	pb.WriteString("\n" + CoordinationNote + "\n")

	return []Block{
		newBlock(NutritionPsychologyAgent, StyleNutrition, nb.String()),
		newBlock(NutritionPsychologyAgent, StylePsychology, pb.String()),
	}
}
