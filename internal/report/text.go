package report

import (
	"fmt"
	"strings"

	"github.com/ashureev/kneeoa/internal/domain"
)

// TemplateText flattens the structured report template: each section
// heading, its lines, then a blank line.
func TemplateText(tmpl domain.ReportTemplate) string {
	var lines []string
	for _, section := range tmpl.Keys {
		lines = append(lines, section)
		items, _ := tmpl.Get(section)
		lines = append(lines, items...)
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// Table is one titled grid of the prediction report.
type Table struct {
	Title   string
	Caption string
	Columns []string
	Rows    [][]string
}

type trajectoryRow struct {
	label string
	key   string
}

var symptomRows = []trajectoryRow{
	{"Right Knee Pain", "symptom_trajectory.right_knee.pain"},
	{"Right Knee Symptoms", "symptom_trajectory.right_knee.symptoms"},
	{"Sport/Recreation Function", "symptom_trajectory.right_knee.sport_recreation_function"},
	{"Quality of Life", "symptom_trajectory.right_knee.quality_of_life"},
	{"Left Knee Pain", "symptom_trajectory.left_knee.pain"},
}

var imagingRows = []trajectoryRow{
	{"Right", "imaging_trajectory.right_knee.pain"},
	{"Left", "imaging_trajectory.left_knee.pain"},
}

// Visits in report order.
var visits = []string{"v00", "v01", "v04"}

func trajectory(p domain.PredictionParams, key string) []string {
	out := make([]string, len(visits))
	for i, v := range visits {
		out[i] = p.Display(key + "." + v)
	}
	return out
}

// PredictionIntro opens the prediction report.
const PredictionIntro = "Excellent! I’ve received your case report, thanks for submitting it! " +
	"With this complete dataset, I can now provide you with a comprehensive forecast of how your knee condition may evolve over time. " +
	"Here’s what the model predicts:"

// PredictionTables builds the symptom, imaging and SHAP tables. Missing
// values show as N/A; a malformed factor list is an error.
func PredictionTables(p domain.PredictionParams) ([]Table, error) {
	symptoms := Table{
		Title:   "📊 Symptom Trajectory Forecast (KOOS, 0–100)",
		Caption: "Here is the forecast of your knee-related symptoms over the coming years:",
		Columns: []string{"Metric", "Current (V00)", "Year 2 (V01)", "Year 4 (V04)"},
	}
	for _, row := range symptomRows {
		symptoms.Rows = append(symptoms.Rows, append([]string{row.label}, trajectory(p, row.key)...))
	}

	imaging := Table{
		Title:   "🦴 Imaging Trajectory (KL grade, 0–4)",
		Caption: "Here’s how your knee structure may change over time, based on imaging predictions:",
		Columns: []string{"Knee", "Current", "Year 2", "Year 4"},
	}
	for _, row := range imagingRows {
		imaging.Rows = append(imaging.Rows, append([]string{row.label}, trajectory(p, row.key)...))
	}

	factors, err := p.KeyFactors()
	if err != nil {
		return nil, err
	}
	shap := Table{
		Title:   "💡 Key Contributing Factors (SHAP)",
		Caption: "These are the most impactful factors influencing your right knee symptoms at Year 2:",
		Columns: []string{"Feature", "Impact on KOOS Symptoms"},
	}
	for _, f := range factors {
		shap.Rows = append(shap.Rows, []string{featureName(f), fmt.Sprintf("%s (%s)", f.ImpactText(), f.Effect)})
	}

	return []Table{symptoms, imaging, shap}, nil
}

func featureName(f domain.KeyFactor) string {
	if f.Feature == "" {
		return "Unknown"
	}
	return f.Feature
}

// PredictionText renders the prediction report as plain text for the PDF.
func PredictionText(p domain.PredictionParams) (string, error) {
	factors, err := p.KeyFactors()
	if err != nil {
		return "", err
	}

	var lines []string
	lines = append(lines, "📊 Symptom Trajectory Forecast (KOOS, 0–100)")
	for _, row := range symptomRows {
		v := trajectory(p, row.key)
		lines = append(lines, fmt.Sprintf("- %s:  Current=%s, Year 2=%s, Year 4=%s", row.label, v[0], v[1], v[2]))
	}
	lines = append(lines, "")

	lines = append(lines, "🦴 Imaging Trajectory (KL grade, 0–4)")
	for _, row := range imagingRows {
		v := trajectory(p, row.key)
		lines = append(lines, fmt.Sprintf("- %s Knee:  Current=%s, Year 2=%s, Year 4=%s", row.label, v[0], v[1], v[2]))
	}
	lines = append(lines, "")

	lines = append(lines, "💡 Key Contributing Factors (SHAP)")
	for _, f := range factors {
		lines = append(lines, fmt.Sprintf("- %s: %s (%s)", featureName(f), f.ImpactText(), f.Effect))
	}

	return strings.Join(lines, "\n"), nil
}
