// Package reveal implements the staged reveal engine: a fixed sequence of
// chat turns is shown one at a time, at most one new turn per interval.
//
// The engine schedules nothing itself. A view-layer timer (the websocket
// feed, the terminal UI) calls Tick periodically.
package reveal

import (
	"time"

	"github.com/ashureev/kneeoa/internal/domain"
)

// State is the per-session reveal state. The zero value is uninitialized.
type State struct {
	Turns       []domain.Turn `json:"turns"`
	Count       int           `json:"revealed_count"`
	LastTick    time.Time     `json:"last_tick_time"`
	Initialized bool          `json:"initialized"`
}

// Initialize loads the turn sequence and reveals the first turn.
// Calling it on an initialized state does nothing.
func (s *State) Initialize(turns []domain.Turn, now time.Time) {
	if s.Initialized {
		return
	}
	s.Turns = append([]domain.Turn(nil), turns...)
	s.Count = 0
	if len(s.Turns) > 0 {
		s.Count = 1
	}
	s.LastTick = now
	s.Initialized = true
}

// Tick reveals one more turn if more than interval has passed since the
// previous reveal. It never reveals more than one turn per call.
func (s *State) Tick(now time.Time, interval time.Duration) {
	if s.Count < len(s.Turns) && now.Sub(s.LastTick) > interval {
		s.Count++
		s.LastTick = now
	}
}

// Visible returns the revealed prefix of the sequence. The slice is
// capacity-clipped, so appending to it never touches the state.
func (s *State) Visible() []domain.Turn {
	return s.Turns[:s.Count:s.Count]
}

// Pending reports whether turns remain to be revealed.
func (s *State) Pending() bool {
	return s.Count < len(s.Turns)
}

// Revealed returns the number of visible turns.
func (s *State) Revealed() int {
	return s.Count
}

// Len returns the total number of turns, revealed or not.
func (s *State) Len() int {
	return len(s.Turns)
}

// Append adds turns to the end of the sequence without revealing them.
func (s *State) Append(turns ...domain.Turn) {
	s.Turns = append(s.Turns, turns...)
}

// RevealAll makes every turn visible.
func (s *State) RevealAll() {
	s.Count = len(s.Turns)
}

// Reset clears the state so the next Initialize starts over.
func (s *State) Reset() {
	*s = State{}
}

// Clamp restores 0 <= Count <= Len after decoding untrusted state.
func (s *State) Clamp() {
	if s.Count < 0 {
		s.Count = 0
	}
	if s.Count > len(s.Turns) {
		s.Count = len(s.Turns)
	}
}
