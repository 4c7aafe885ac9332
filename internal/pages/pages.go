// Package pages serves the four demo pages, their form posts and the
// report downloads.
package pages

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/kneeoa/internal/chat"
	"github.com/ashureev/kneeoa/internal/config"
	"github.com/ashureev/kneeoa/internal/content"
	"github.com/ashureev/kneeoa/internal/identity"
	"github.com/ashureev/kneeoa/internal/render"
	"github.com/ashureev/kneeoa/internal/session"
	"github.com/ashureev/kneeoa/web"
)

// Content-relative image paths.
const (
	logoImage                    = "images/logo.png"
	frameworkImage               = "images/framework.png"
	statusFrameworkImage         = "images/status_framework.png"
	predictingFrameworkImage     = "images/predicting_framework.png"
	recommendationFrameworkImage = "images/Recommendation_framework.png"
)

// Server renders the pages of one process.
type Server struct {
	content  *content.Store
	sessions *session.Manager
	chat     *chat.Handler
	reveal   config.RevealConfig
	tmpl     *template.Template
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// New parses the embedded templates and returns a ready server.
func New(store *content.Store, sessions *session.Manager, handler *chat.Handler, reveal config.RevealConfig) (*Server, error) {
	tmpl, err := web.Templates(template.FuncMap{
		"withSession": withSession,
		"inc":         func(i int) int { return i + 1 },
	})
	if err != nil {
		return nil, err
	}
	return &Server{
		content:  store,
		sessions: sessions,
		chat:     handler,
		reveal:   reveal,
		tmpl:     tmpl,
		now:      time.Now,
		sleep:    render.Sleep,
	}, nil
}

// RegisterRoutes mounts the page surface on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/", s.Page)

	r.Post("/assessment/chat", s.SubmitChat)
	r.Post("/assessment/image/picker", s.OpenPicker)
	r.Post("/assessment/image/select", s.SelectImage)
	r.Get("/assessment/report.pdf", s.AssessmentPDF)
	r.Get("/assessment/report.json", s.AssessmentJSON)

	r.Post("/prediction/run", s.RunPrediction)
	r.Get("/prediction/report.pdf", s.PredictionPDF)
	r.Get("/prediction/report.json", s.PredictionJSON)

	r.Post("/therapy/case", s.SelectCase)
	r.Post("/therapy/start", s.StartTherapy)

	r.Handle("/content/images/*", http.StripPrefix("/content/images/", http.FileServer(http.FS(s.content.Images()))))
	r.Handle("/static/*", http.StripPrefix("/static", web.StaticHandler()))
}

type navItem struct {
	Name   string
	URL    string
	Active bool
}

type figure struct {
	URL     string
	Caption string
}

// view is the data every page template receives.
type view struct {
	Title     string
	Page      string
	SessionID string
	Nav       []navItem
	Logo      string
	Warnings  []string
	Errors    []string
	Body      any
}

func (s *Server) newView(r *http.Request, page string) *view {
	sid := identity.SessionIDFromContext(r.Context())
	v := &view{Title: page, Page: page, SessionID: sid}
	for _, p := range Pages {
		v.Nav = append(v.Nav, navItem{Name: p, URL: pageURL(p, sid, nil), Active: p == page})
	}
	if s.content.HasImage(logoImage) {
		v.Logo = contentURL(logoImage)
	}
	return v
}

// figure returns the image for p, or nil plus a page warning when the
// image is missing.
func (s *Server) figure(v *view, p, caption string) *figure {
	if !s.content.HasImage(p) {
		v.Warnings = append(v.Warnings, "Image not found: "+p)
		return nil
	}
	return &figure{URL: contentURL(p), Caption: caption}
}

// render executes header, the named body templates and footer into a
// buffer so a template failure never leaves a half-written page.
func (s *Server) render(w http.ResponseWriter, status int, v *view, names ...string) {
	var buf bytes.Buffer
	names = append(append([]string{"header"}, names...), "footer")
	for _, name := range names {
		if err := s.tmpl.ExecuteTemplate(&buf, name, v); err != nil {
			slog.Error("Failed to render page", "page", v.Page, "template", name, "error", err)
			http.Error(w, "failed to render page", http.StatusInternalServerError)
			return
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("Failed to write page", "page", v.Page, "error", err)
	}
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	v := s.newView(r, "")
	v.Title = "Error"
	v.Body = message
	s.render(w, status, v, "error")
}

func sessionKey(r *http.Request) session.Key {
	return session.Key{
		UserID:    identity.UserIDFromContext(r.Context()),
		SessionID: identity.SessionIDFromContext(r.Context()),
	}
}

// redirect sends the browser back to page after a form post.
func redirect(w http.ResponseWriter, r *http.Request, page string) {
	sid := identity.SessionIDFromContext(r.Context())
	http.Redirect(w, r, pageURL(page, sid, nil), http.StatusSeeOther)
}

func pageURL(page, sessionID string, extra url.Values) string {
	q := url.Values{}
	for k, vs := range extra {
		q[k] = vs
	}
	q.Set("page", page)
	q.Set(identity.SessionQueryParam, sessionID)
	return "/?" + q.Encode()
}

func withSession(path, sessionID string) string {
	return path + "?" + url.Values{identity.SessionQueryParam: {sessionID}}.Encode()
}

func contentURL(p string) string {
	return "/content/" + p
}

// downloadStatus maps a content error to an HTTP status.
func downloadStatus(err error) int {
	if errors.Is(err, content.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// attach writes data as a file download.
func attach(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Debug("Failed to write download", "file", filename, "error", err)
	}
}
