package live

import (
	"context"
	"time"

	"github.com/ashureev/kneeoa/internal/render"
	"github.com/ashureev/kneeoa/internal/session"
)

// Frame types.
const (
	FrameTurns = "turns"
	FrameDone  = "done"
)

// minTickPeriod keeps very small reveal intervals from spinning.
const minTickPeriod = 10 * time.Millisecond

// Frame is one message pushed to the browser.
type Frame struct {
	Type     string `json:"type"`
	Revealed int    `json:"revealed"`
	Total    int    `json:"total"`
	HTML     string `json:"html,omitempty"`
}

// Feed drives the reveal timer for one session at a time.
type Feed struct {
	sessions *session.Manager
	interval time.Duration
	now      func() time.Time
}

// NewFeed creates a feed that reveals one turn per interval.
func NewFeed(sessions *session.Manager, interval time.Duration) *Feed {
	return &Feed{sessions: sessions, interval: interval, now: time.Now}
}

// Run ticks the session's chat at half the reveal interval and sends a
// frame whenever the visible turns change. It sends FrameDone and returns
// once nothing is pending, or returns when ctx is done.
func (f *Feed) Run(ctx context.Context, key session.Key, send func(Frame) error) error {
	period := f.interval / 2
	if period < minTickPeriod {
		period = minTickPeriod
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	last := -1
	for {
		var frame Frame
		var pending bool
		err := f.sessions.Do(ctx, key, func(st *session.State) error {
			if st.Chat.Initialized {
				st.Chat.Tick(f.now(), f.interval)
			}
			pending = st.Chat.Pending()
			frame = Frame{
				Type:     FrameTurns,
				Revealed: st.Chat.Revealed(),
				Total:    st.Chat.Len(),
			}
			if frame.Revealed != last {
				frame.HTML = string(render.Turns(st.Chat.Visible()))
			}
			return nil
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if frame.Revealed != last {
			last = frame.Revealed
			if err := send(frame); err != nil {
				return err
			}
		}
		if !pending {
			return send(Frame{Type: FrameDone, Revealed: frame.Revealed, Total: frame.Total})
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
