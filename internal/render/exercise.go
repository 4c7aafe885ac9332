package render

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ashureev/kneeoa/internal/domain"
)

var weekPattern = regexp.MustCompile(`Week (\d+)`)

// WeekNumber extracts the first week number from a phase label such as
// "Week 1–4". Labels without one sort as week 0.
func WeekNumber(label string) int {
	normalized := strings.NewReplacer("–", "-", "—", "-").Replace(label)
	m := weekPattern.FindStringSubmatch(normalized)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// SortedPhases returns the plan's phase labels ordered by week number.
// Labels with equal week numbers keep document order.
func SortedPhases(plan domain.ExercisePlan) []string {
	labels := append([]string(nil), plan.Keys...)
	sort.SliceStable(labels, func(i, j int) bool {
		return WeekNumber(labels[i]) < WeekNumber(labels[j])
	})
	return labels
}

// defaultCategory names prescriptions that carry no Category.
const defaultCategory = "Training"

// Exercise renders one block per phase.
func Exercise(plan domain.ExercisePlan) []Block {
	labels := SortedPhases(plan)
	blocks := make([]Block, 0, len(labels))

	for i, label := range labels {
		phase, _ := plan.Get(label)

		var b strings.Builder
		fmt.Fprintf(&b, "#### Phase %d: %s\n\n", i+1, label)
		fmt.Fprintf(&b, "**GOAL:** %s\n\n", phase.Goal)

		for _, item := range phase.Prescription {
			category := item.Category
			if category == "" {
				category = defaultCategory
			}
			fmt.Fprintf(&b, "**%s Training:**\n\n", category)
			for _, part := range strings.Split(item.Description, ", ") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				fmt.Fprintf(&b, "- %s\n", part)
			}
			b.WriteString("\n")
		}

		blocks = append(blocks, newBlock(ExerciseAgent, StyleExercise, b.String()))
	}
	return blocks
}
