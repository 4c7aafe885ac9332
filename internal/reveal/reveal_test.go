package reveal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ashureev/kneeoa/internal/domain"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func script(n int) []domain.Turn {
	turns := make([]domain.Turn, n)
	for i := range turns {
		turns[i] = domain.AssistantTurn("turn")
	}
	return turns
}

func TestInitialize(t *testing.T) {
	var s State
	s.Initialize(script(3), t0)
	require.Equal(t, 1, s.Revealed())
	require.Equal(t, t0, s.LastTick)

	var empty State
	empty.Initialize(nil, t0)
	require.Equal(t, 0, empty.Revealed())
	require.False(t, empty.Pending())
}

func TestInitializeIsIdempotent(t *testing.T) {
	var s State
	s.Initialize(script(3), t0)
	s.Tick(t0.Add(3*time.Second), 2*time.Second)
	before := s

	s.Initialize(script(5), t0.Add(time.Hour))
	require.Equal(t, before.Count, s.Count)
	require.Equal(t, before.LastTick, s.LastTick)
	require.Len(t, s.Turns, 3)
}

func TestTickRequiresStrictlyMoreThanInterval(t *testing.T) {
	var s State
	s.Initialize(script(3), t0)

	s.Tick(t0.Add(2*time.Second), 2*time.Second)
	require.Equal(t, 1, s.Revealed())

	s.Tick(t0.Add(2*time.Second+time.Millisecond), 2*time.Second)
	require.Equal(t, 2, s.Revealed())
}

func TestTickAtMostOnePerCall(t *testing.T) {
	var s State
	s.Initialize(script(10), t0)

	// A long gap still reveals only one turn.
	s.Tick(t0.Add(time.Hour), 2*time.Second)
	require.Equal(t, 2, s.Revealed())

	// A non-positive interval still reveals only one turn per call.
	s.Tick(t0.Add(time.Hour+time.Nanosecond), 0)
	require.Equal(t, 3, s.Revealed())
	s.Tick(t0.Add(time.Hour+2*time.Nanosecond), -time.Second)
	require.Equal(t, 4, s.Revealed())
}

func TestTickMonotonicAndBounded(t *testing.T) {
	var s State
	s.Initialize(script(4), t0)

	now := t0
	prev := s.Revealed()
	for i := 0; i < 50; i++ {
		now = now.Add(time.Duration(i%4) * time.Second)
		s.Tick(now, 2*time.Second)
		require.GreaterOrEqual(t, s.Revealed(), prev)
		require.LessOrEqual(t, s.Revealed()-prev, 1)
		require.LessOrEqual(t, s.Revealed(), s.Len())
		prev = s.Revealed()
	}
	require.Equal(t, 4, s.Revealed())
	require.False(t, s.Pending())

	last := s.LastTick
	s.Tick(now.Add(time.Hour), 2*time.Second)
	require.Equal(t, 4, s.Revealed())
	require.Equal(t, last, s.LastTick)
}

func TestVisibleDoesNotAlias(t *testing.T) {
	var s State
	s.Initialize(script(3), t0)

	visible := s.Visible()
	require.Len(t, visible, 1)
	_ = append(visible, domain.UserTurn("injected"))
	require.Equal(t, domain.RoleAssistant, s.Turns[1].Role)
}

func TestAppendRevealAllAndReset(t *testing.T) {
	var s State
	s.Initialize(script(2), t0)
	s.Append(domain.UserTurn("hi"), domain.AssistantTurn("hello"))
	require.Equal(t, 4, s.Len())
	require.Equal(t, 1, s.Revealed())

	s.RevealAll()
	require.Equal(t, 4, s.Revealed())

	s.Reset()
	require.False(t, s.Initialized)
	require.Equal(t, 0, s.Len())
}

func TestClamp(t *testing.T) {
	s := State{Turns: script(2), Count: 9}
	s.Clamp()
	require.Equal(t, 2, s.Count)

	s.Count = -1
	s.Clamp()
	require.Equal(t, 0, s.Count)
}

func TestProgress(t *testing.T) {
	p := NewProgress(AgentSteps)
	require.Equal(t, 0, p.Percent())

	p.Advance()
	require.Equal(t, 25, p.Percent())
	require.InDelta(t, 0.25, p.Fraction(), 1e-9)

	p.Advance()
	p.Advance()
	p.Advance()
	p.Advance()
	require.Equal(t, 4, p.Step)
	require.Equal(t, 100, p.Percent())
	require.True(t, p.Done())

	thirds := Progress{Step: 1, Total: 3}
	require.Equal(t, 33, thirds.Percent())
}
