package pages

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ashureev/kneeoa/internal/content"
	"github.com/ashureev/kneeoa/internal/render"
	"github.com/ashureev/kneeoa/internal/session"
)

type therapyBody struct {
	Cases     []string
	Selected  string
	Reports   []string
	Started   bool
	Framework *figure
}

type stageView struct {
	Title   string
	Step    int
	Total   int
	Percent int
	Blocks  []render.Block
}

func (s *Server) therapy(w http.ResponseWriter, r *http.Request) {
	v := s.newView(r, PageTherapy)
	body := therapyBody{Framework: s.figure(v, recommendationFrameworkImage, "Framework for personalizing treatment")}
	v.Body = &body

	cases, err := s.content.Cases()
	if err != nil && !errors.Is(err, content.ErrNotFound) {
		slog.Error("Failed to load case catalog", "error", err)
	}
	if err != nil || cases.Len() == 0 {
		v.Warnings = append(v.Warnings, "Case data cannot be loaded.")
		s.render(w, http.StatusOK, v, "therapy", "therapy_end")
		return
	}
	body.Cases = cases.Keys

	st, err := s.sessions.View(r.Context(), sessionKey(r))
	if err != nil {
		slog.Error("Failed to load therapy session", "error", err)
		v.Errors = append(v.Errors, "Unable to load the session state.")
		s.render(w, http.StatusOK, v, "therapy", "therapy_end")
		return
	}
	if c, ok := cases.Get(st.SelectedCase); ok {
		body.Selected = st.SelectedCase
		body.Reports = c.Reports
		body.Started = st.TherapyStarted
	}

	if !body.Started {
		s.render(w, http.StatusOK, v, "therapy", "therapy_end")
		return
	}
	s.streamAgents(w, r, v)
}

// streamAgents writes the page head, then each agent stage as the
// sequencer emits it, flushing after every fragment.
func (s *Server) streamAgents(w http.ResponseWriter, r *http.Request, v *view) {
	ctx := r.Context()
	rc := http.NewResponseController(w)
	write := func(name string, data any) error {
		if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
			return err
		}
		if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return err
		}
		return nil
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	for _, name := range []string{"header", "therapy"} {
		if err := write(name, v); err != nil {
			slog.Error("Failed to stream therapy page", "template", name, "error", err)
			return
		}
	}

	seq := &render.Sequencer{Source: s.content, Delay: s.reveal.AgentDelay, Sleep: s.sleep}
	err := seq.Run(ctx, func(ev render.Event) error {
		if ev.Kind == render.EventReasoning {
			return write("therapy_reasoning", ev.Message)
		}
		return write("therapy_stage", stageView{
			Title:   ev.Title,
			Step:    ev.Progress.Step,
			Total:   ev.Progress.Total,
			Percent: ev.Progress.Percent(),
			Blocks:  ev.Blocks,
		})
	})
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		slog.Warn("Agent sequence stopped", "error", err, "session_id", v.SessionID)
		if werr := write("therapy_error", fmt.Sprintf("Unable to render the agent plans: %v", err)); werr != nil {
			return
		}
	}
	for _, name := range []string{"therapy_end", "footer"} {
		if err := write(name, v); err != nil {
			slog.Debug("Failed to finish therapy page", "error", err)
			return
		}
	}
}

// SelectCase records the case picked in the selector. An empty value clears
// the selection.
func (s *Server) SelectCase(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid form submission")
		return
	}
	name := r.PostFormValue("case")
	if name != "" {
		cases, err := s.content.Cases()
		if err != nil {
			s.renderError(w, r, downloadStatus(err), "Case data cannot be loaded.")
			return
		}
		if _, ok := cases.Get(name); !ok {
			s.renderError(w, r, http.StatusBadRequest, fmt.Sprintf("Unknown case: %s", name))
			return
		}
	}

	err := s.sessions.Do(r.Context(), sessionKey(r), func(st *session.State) error {
		st.SelectCase(name)
		return nil
	})
	if err != nil {
		slog.Error("Failed to select case", "error", err)
		s.renderError(w, r, http.StatusInternalServerError, "Unable to save the case selection.")
		return
	}
	redirect(w, r, PageTherapy)
}

// StartTherapy starts the multi-agent run for the selected case.
func (s *Server) StartTherapy(w http.ResponseWriter, r *http.Request) {
	err := s.sessions.Do(r.Context(), sessionKey(r), func(st *session.State) error {
		if st.SelectedCase != "" {
			st.TherapyStarted = true
		}
		return nil
	})
	if err != nil {
		slog.Error("Failed to start therapy run", "error", err)
		s.renderError(w, r, http.StatusInternalServerError, "Unable to start the agents.")
		return
	}
	redirect(w, r, PageTherapy)
}
