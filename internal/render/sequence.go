package render

import (
	"context"
	"fmt"
	"time"

	"github.com/ashureev/kneeoa/internal/domain"
	"github.com/ashureev/kneeoa/internal/reveal"
)

// DefaultReasoningDelay is the simulated thinking time before the
// decision-making agent speaks.
const DefaultReasoningDelay = 3 * time.Second

// ReasoningMessage is shown while the simulated delay runs.
const ReasoningMessage = "Clinical Decision-Making Agent reasoning..."

// PlanSource supplies the four plan documents. content.Store implements it.
type PlanSource interface {
	ExercisePlan() (domain.ExercisePlan, error)
	SurgicalPharmaPlan() (domain.SurgicalPharmaPlan, error)
	NutritionPsychologyPlan() (domain.NutritionPsychologyPlan, error)
	ClinicalIntegrationPlan() (domain.ClinicalIntegrationPlan, error)
}

// AgentTitle returns the display name of an agent's stage.
func AgentTitle(agent domain.Agent) string {
	switch agent {
	case domain.AgentExercise:
		return ExerciseAgent
	case domain.AgentSurgicalPharma:
		return SurgicalPharmaAgent
	case domain.AgentNutritionPsychology:
		return NutritionPsychologyAgent
	case domain.AgentClinicalIntegration:
		return ClinicalIntegrationAgent
	default:
		return string(agent)
	}
}

// Agent loads and renders a single agent's plan.
func Agent(src PlanSource, agent domain.Agent) ([]Block, error) {
	switch agent {
	case domain.AgentExercise:
		plan, err := src.ExercisePlan()
		if err != nil {
			return nil, err
		}
		return Exercise(plan), nil
	case domain.AgentSurgicalPharma:
		plan, err := src.SurgicalPharmaPlan()
		if err != nil {
			return nil, err
		}
		return SurgicalPharma(plan), nil
	case domain.AgentNutritionPsychology:
		plan, err := src.NutritionPsychologyPlan()
		if err != nil {
			return nil, err
		}
		return NutritionPsychology(plan), nil
	case domain.AgentClinicalIntegration:
		plan, err := src.ClinicalIntegrationPlan()
		if err != nil {
			return nil, err
		}
		return ClinicalIntegration(plan), nil
	default:
		return nil, fmt.Errorf("unknown agent %q", agent)
	}
}

// EventKind distinguishes sequencer events.
type EventKind int

const (
	// EventStage carries one agent's rendered blocks.
	EventStage EventKind = iota
	// EventReasoning announces the simulated delay.
	EventReasoning
)

// Event is emitted by the sequencer as the run advances.
type Event struct {
	Kind     EventKind
	Progress reveal.Progress
	Agent    domain.Agent
	Title    string
	Blocks   []Block
	Message  string
}

// Sequencer reveals the four agents in order with the reasoning pause
// before the last one.
type Sequencer struct {
	Source PlanSource
	Delay  time.Duration
	Sleep  func(ctx context.Context, d time.Duration) error
}

// NewSequencer creates a sequencer with a context-aware sleep.
func NewSequencer(src PlanSource, delay time.Duration) *Sequencer {
	return &Sequencer{Source: src, Delay: delay, Sleep: Sleep}
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run emits one stage event per agent, advancing progress to 1..4. A plan
// that fails to load ends the run with an error; stages already emitted
// stay emitted.
func (s *Sequencer) Run(ctx context.Context, emit func(Event) error) error {
	progress := reveal.NewProgress(reveal.AgentSteps)
	sleep := s.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	for _, agent := range domain.Agents {
		if agent == domain.AgentClinicalIntegration {
			if err := emit(Event{Kind: EventReasoning, Progress: progress, Message: ReasoningMessage}); err != nil {
				return err
			}
			if err := sleep(ctx, s.Delay); err != nil {
				return err
			}
		}

		progress.Advance()
		blocks, err := Agent(s.Source, agent)
		if err != nil {
			return fmt.Errorf("load %s plan: %w", agent, err)
		}
		err = emit(Event{
			Kind:     EventStage,
			Progress: progress,
			Agent:    agent,
			Title:    AgentTitle(agent),
			Blocks:   blocks,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
