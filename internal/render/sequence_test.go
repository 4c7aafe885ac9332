package render

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ashureev/kneeoa/internal/content"
	"github.com/ashureev/kneeoa/internal/domain"
)

type failingSource struct {
	PlanSource
}

func (failingSource) NutritionPsychologyPlan() (domain.NutritionPsychologyPlan, error) {
	return domain.NutritionPsychologyPlan{}, content.ErrMalformed
}

func openFixtures(t *testing.T) *content.Store {
	t.Helper()
	s, err := content.Open("")
	require.NoError(t, err)
	return s
}

func TestSequencerOrderAndDelay(t *testing.T) {
	var log []string
	seq := NewSequencer(openFixtures(t), 3*time.Second)
	seq.Sleep = func(_ context.Context, d time.Duration) error {
		log = append(log, "sleep "+d.String())
		return nil
	}

	var steps []int
	err := seq.Run(context.Background(), func(ev Event) error {
		switch ev.Kind {
		case EventStage:
			log = append(log, string(ev.Agent))
			steps = append(steps, ev.Progress.Step)
			require.NotEmpty(t, ev.Blocks)
		case EventReasoning:
			log = append(log, "reasoning")
			require.Equal(t, 3, ev.Progress.Step)
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{
		"exercise", "surgical_pharma", "nutrition_psychology",
		"reasoning", "sleep 3s",
		"clinical_integration",
	}, log)
	require.Equal(t, []int{1, 2, 3, 4}, steps)
}

func TestSequencerStopsOnPlanError(t *testing.T) {
	seq := NewSequencer(failingSource{PlanSource: openFixtures(t)}, 0)
	seq.Sleep = func(context.Context, time.Duration) error {
		t.Fatal("must not reach the reasoning delay")
		return nil
	}

	var agents []domain.Agent
	err := seq.Run(context.Background(), func(ev Event) error {
		agents = append(agents, ev.Agent)
		return nil
	})
	require.ErrorIs(t, err, content.ErrMalformed)
	require.Equal(t, []domain.Agent{domain.AgentExercise, domain.AgentSurgicalPharma}, agents)
}

func TestSequencerStopsWhenEmitFails(t *testing.T) {
	stop := errors.New("client went away")
	seq := NewSequencer(openFixtures(t), 0)

	calls := 0
	err := seq.Run(context.Background(), func(Event) error {
		calls++
		return stop
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, 1, calls)
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
	require.NoError(t, Sleep(context.Background(), 0))
}

func TestAgentRejectsUnknown(t *testing.T) {
	_, err := Agent(openFixtures(t), domain.Agent("oracle"))
	require.Error(t, err)
}
