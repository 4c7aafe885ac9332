package domain

// Agent identifies one specialist in the therapy recommendation workflow.
type Agent string

const (
	AgentExercise            Agent = "exercise"
	AgentSurgicalPharma      Agent = "surgical_pharma"
	AgentNutritionPsychology Agent = "nutrition_psychology"
	AgentClinicalIntegration Agent = "clinical_integration"
)

// Agents lists the specialists in the order their plans are revealed.
var Agents = []Agent{
	AgentExercise,
	AgentSurgicalPharma,
	AgentNutritionPsychology,
	AgentClinicalIntegration,
}

// Valid reports whether a is one of the four known agents.
func (a Agent) Valid() bool {
	for _, known := range Agents {
		if a == known {
			return true
		}
	}
	return false
}

// ExercisePlan maps a phase label such as "Week 1-4" to its prescription.
type ExercisePlan = Ordered[ExercisePhase]

// ExercisePhase is one time-boxed block of the exercise programme.
type ExercisePhase struct {
	Goal         string         `json:"Goal,omitempty"`         // optional
	Prescription []Prescription `json:"Prescription,omitempty"` // optional
}

// Prescription is one training category within a phase.
// Description holds comma-separated exercise fragments.
type Prescription struct {
	Category    string `json:"Category,omitempty"` // optional
	Description string `json:"Description,omitempty"`
}

// SurgicalPharmaPlan is the surgical and pharmacological specialist's output.
type SurgicalPharmaPlan struct {
	MatchedGuidelines []MatchedGuideline `json:"matched_guidelines,omitempty"` // optional
	MedicationPlan    []Medication       `json:"medication_plan,omitempty"`    // optional
}

// MatchedGuideline wraps the free text of an appropriateness-criteria scenario.
type MatchedGuideline struct {
	Guideline string `json:"guideline"`
}

// Medication is one row of the pharmacological management table.
type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage,omitempty"`
	Frequency string `json:"frequency,omitempty"`
}

// NutritionPsychologyPlan is the nutrition and psychology specialist's output.
type NutritionPsychologyPlan struct {
	Nutrition  InterventionTrack `json:"nutrition"`
	Psychology InterventionTrack `json:"psychology"`
}

// InterventionTrack is one programme with free-text content lines.
type InterventionTrack struct {
	Goal     string   `json:"goal,omitempty"`     // optional
	Duration string   `json:"duration,omitempty"` // optional
	Content  []string `json:"content,omitempty"`  // optional
}

// ClinicalIntegrationPlan is the decision-making agent's merged plan.
// Every field is optional; absent fields render as empty text.
type ClinicalIntegrationPlan struct {
	Goals                    TreatmentGoals   `json:"Goals"`
	InterventionPlan         InterventionPlan `json:"InterventionPlan"`
	AccessibilityFeasibility string           `json:"AccessibilityFeasibility,omitempty"`
	PersonalizationRationale string           `json:"PersonalizationRationale,omitempty"`
	EvidenceCompliance       string           `json:"EvidenceCompliance,omitempty"`
}

// TreatmentGoals holds the primary and secondary goals of the merged plan.
type TreatmentGoals struct {
	Primary   string `json:"Primary,omitempty"`
	Secondary string `json:"Secondary,omitempty"`
}

// InterventionPlan groups the six sub-sections of the merged plan.
type InterventionPlan struct {
	Medication                        SectionSummary   `json:"Medication"`
	NutritionPlan                     NutritionSummary `json:"NutritionPlan"`
	ExercisePlan                      ExerciseSummary  `json:"ExercisePlan"`
	PsychologicalSupport              SectionSummary   `json:"PsychologicalSupport"`
	SurgicalOrInjectionConsiderations SectionSummary   `json:"SurgicalOrInjectionConsiderations"`
	SafetyMonitoring                  SectionSummary   `json:"SafetyMonitoring"`
}

// SectionSummary is a sub-section described by a single summary sentence.
type SectionSummary struct {
	Summary string `json:"Summary,omitempty"`
}

// NutritionSummary is the merged nutrition sub-section.
type NutritionSummary struct {
	Framework   string `json:"Framework,omitempty"`
	Description string `json:"Description,omitempty"`
}

// ExerciseSummary is the merged exercise sub-section with its phases.
type ExerciseSummary struct {
	Framework string                `json:"Framework,omitempty"`
	Phases    Ordered[PhaseSummary] `json:"Phases"`
}

// PhaseSummary condenses one exercise phase into a goal and a prescription.
type PhaseSummary struct {
	Goal         string `json:"Goal,omitempty"`
	Prescription string `json:"Prescription,omitempty"`
}

// PlanSet bundles the four plan documents for one therapy run.
type PlanSet struct {
	Exercise            ExercisePlan
	SurgicalPharma      SurgicalPharmaPlan
	NutritionPsychology NutritionPsychologyPlan
	ClinicalIntegration ClinicalIntegrationPlan
}
