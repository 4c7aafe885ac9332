package render

import (
	"fmt"
	"strings"

	"github.com/ashureev/kneeoa/internal/domain"
)

// ClinicalIntegration renders the merged plan as one block. Every section
// header is always present, even when its fields are empty.
func ClinicalIntegration(plan domain.ClinicalIntegrationPlan) []Block {
	ip := plan.InterventionPlan
	var b strings.Builder

	b.WriteString("#### Integrated Multimodal Intervention Plan\n\n")
	b.WriteString("**🩺 Medication Strategy**\n\n")
	fmt.Fprintf(&b, "- %s\n\n", ip.Medication.Summary)

	b.WriteString("**🥗 Nutrition Plan**\n\n")
	fmt.Fprintf(&b, "- **Framework:** %s\n", ip.NutritionPlan.Framework)
	fmt.Fprintf(&b, "- %s\n\n", ip.NutritionPlan.Description)

	b.WriteString("**🏃 Exercise Plan**\n\n")
	fmt.Fprintf(&b, "- **Framework:** %s\n", ip.ExercisePlan.Framework)
	for _, label := range ip.ExercisePlan.Phases.Keys {
		phase, _ := ip.ExercisePlan.Phases.Get(label)
		fmt.Fprintf(&b, "  - **%s:** %s\n", label, phase.Goal)
		fmt.Fprintf(&b, "    - %s\n", phase.Prescription)
	}
	b.WriteString("\n")

	b.WriteString("**🧠 Psychological Support**\n\n")
	fmt.Fprintf(&b, "- %s\n\n", ip.PsychologicalSupport.Summary)

	b.WriteString("**🛠️ Surgical or Injection Considerations**\n\n")
	fmt.Fprintf(&b, "- %s\n\n", ip.SurgicalOrInjectionConsiderations.Summary)

	b.WriteString("**🔍 Safety Monitoring Plan**\n\n")
	fmt.Fprintf(&b, "- %s\n\n", ip.SafetyMonitoring.Summary)

	b.WriteString("#### Personalized Treatment Context\n\n")
	fmt.Fprintf(&b, "- **Accessibility & Feasibility:** %s\n", plan.AccessibilityFeasibility)
	fmt.Fprintf(&b, "- **Personalization Rationale:** %s\n", plan.PersonalizationRationale)
	fmt.Fprintf(&b, "- **Evidence Compliance:** %s\n", plan.EvidenceCompliance)

	return []Block{newBlock(decisionRole, StyleDecision, b.String())}
}
