package pages

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/ashureev/kneeoa/internal/chat"
	"github.com/ashureev/kneeoa/internal/content"
	"github.com/ashureev/kneeoa/internal/domain"
	"github.com/ashureev/kneeoa/internal/render"
	"github.com/ashureev/kneeoa/internal/report"
	"github.com/ashureev/kneeoa/internal/session"
)

type imageView struct {
	Label string
	Path  string
	URL   string // empty when the file is missing
}

type sectionView struct {
	Title string
	Items []string
}

type kneeView struct {
	Knee     string
	Sections []sectionView
}

type assessmentBody struct {
	Turns      template.HTML
	Pending    bool
	Revealed   int
	Total      int
	PickerOpen bool
	Images     []imageView
	Selected   *imageView
	Report     []kneeView
	Framework  *figure
}

func (s *Server) image(img domain.SampleImage) imageView {
	iv := imageView{Label: img.Label, Path: img.Path}
	if s.content.HasImage(img.Path) {
		iv.URL = contentURL(img.Path)
	}
	return iv
}

// initChat loads the scripted conversation the first time a session opens
// the assessment page. It returns a warning when the script is unusable.
func (s *Server) initChat(st *session.State) string {
	if st.Chat.Initialized {
		return ""
	}
	turns, err := s.content.ChatScript()
	var warning string
	switch {
	case errors.Is(err, content.ErrNotFound):
		warning = "Initial chat file not found: assess_chat.json"
	case err != nil:
		slog.Error("Failed to load chat script", "error", err)
		warning = fmt.Sprintf("Failed to load the initial chat: %v", err)
	}
	st.Chat.Initialize(turns, s.now())
	return warning
}

func (s *Server) assessment(w http.ResponseWriter, r *http.Request) {
	v := s.newView(r, PageAssessment)
	body := assessmentBody{Framework: s.figure(v, statusFrameworkImage, "Status framework")}
	key := sessionKey(r)

	var selected bool
	err := s.sessions.Do(r.Context(), key, func(st *session.State) error {
		if warning := s.initChat(st); warning != "" {
			v.Warnings = append(v.Warnings, warning)
		}
		st.Chat.Tick(s.now(), s.reveal.Interval)

		body.Turns = render.Turns(st.Chat.Visible())
		body.Pending = st.Chat.Pending()
		body.Revealed = st.Chat.Revealed()
		body.Total = st.Chat.Len()
		body.PickerOpen = st.ImagePickerOpen
		if st.HasImage() {
			selected = true
			body.Selected = &imageView{Label: st.SelectedImageLabel, Path: st.SelectedImagePath}
			if s.content.HasImage(st.SelectedImagePath) {
				body.Selected.URL = contentURL(st.SelectedImagePath)
			}
		}
		return nil
	})
	if err != nil {
		slog.Error("Failed to update assessment session", "error", err, "session_id", key.SessionID)
		v.Errors = append(v.Errors, "Unable to load the chat session. Please reload the page.")
	}

	if body.PickerOpen {
		for _, img := range domain.SampleImages {
			body.Images = append(body.Images, s.image(img))
		}
	}
	if selected {
		body.Report = s.assessmentReport()
	}

	v.Body = body
	s.render(w, http.StatusOK, v, "assessment")
}

// assessmentReport flattens the structured report for the template. It
// returns nil when the report is missing or empty.
func (s *Server) assessmentReport() []kneeView {
	rep, err := s.content.AssessmentReport()
	if err != nil {
		if !errors.Is(err, content.ErrNotFound) {
			slog.Error("Failed to load assessment report", "error", err)
		}
		return nil
	}
	var out []kneeView
	for _, knee := range rep.Keys {
		sections, _ := rep.Get(knee)
		kv := kneeView{Knee: knee}
		for _, title := range sections.Keys {
			items, _ := sections.Get(title)
			kv.Sections = append(kv.Sections, sectionView{Title: title, Items: items})
		}
		out = append(out, kv)
	}
	return out
}

// SubmitChat handles the chat input form.
func (s *Server) SubmitChat(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid form submission")
		return
	}
	message := r.PostFormValue("message")
	key := sessionKey(r)

	err := s.sessions.Do(r.Context(), key, func(st *session.State) error {
		s.initChat(st)
		_, err := s.chat.Submit(r.Context(), &st.Chat, message)
		if errors.Is(err, chat.ErrEmptyMessage) {
			return nil
		}
		return err
	})
	if err != nil {
		slog.Error("Failed to submit chat message", "error", err, "session_id", key.SessionID)
		s.renderError(w, r, http.StatusInternalServerError, "Unable to save the chat message.")
		return
	}
	redirect(w, r, PageAssessment)
}

// OpenPicker shows the sample image picker.
func (s *Server) OpenPicker(w http.ResponseWriter, r *http.Request) {
	err := s.sessions.Do(r.Context(), sessionKey(r), func(st *session.State) error {
		st.ImagePickerOpen = true
		return nil
	})
	if err != nil {
		slog.Error("Failed to open image picker", "error", err)
		s.renderError(w, r, http.StatusInternalServerError, "Unable to open the image picker.")
		return
	}
	redirect(w, r, PageAssessment)
}

// SelectImage records the chosen sample image.
func (s *Server) SelectImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid form submission")
		return
	}
	label := r.PostFormValue("label")
	img, ok := domain.FindSampleImage(label)
	if !ok {
		s.renderError(w, r, http.StatusBadRequest, fmt.Sprintf("Unknown sample image: %s", label))
		return
	}

	err := s.sessions.Do(r.Context(), sessionKey(r), func(st *session.State) error {
		st.SelectImage(img)
		return nil
	})
	if err != nil {
		slog.Error("Failed to select image", "error", err)
		s.renderError(w, r, http.StatusInternalServerError, "Unable to save the image selection.")
		return
	}
	redirect(w, r, PageAssessment)
}

// AssessmentPDF downloads the structured report template as a PDF.
func (s *Server) AssessmentPDF(w http.ResponseWriter, r *http.Request) {
	tmpl, err := s.content.ReportTemplate()
	if err != nil {
		slog.Error("Failed to load report template", "error", err)
		http.Error(w, "report template unavailable", downloadStatus(err))
		return
	}
	var buf bytes.Buffer
	if err := report.WritePDF(&buf, report.TemplateText(tmpl)); err != nil {
		slog.Error("Failed to render assessment PDF", "error", err)
		http.Error(w, "failed to render pdf", http.StatusInternalServerError)
		return
	}
	attach(w, "application/pdf", report.AssessmentPDFName, buf.Bytes())
}

// AssessmentJSON downloads the custom patient report.
func (s *Server) AssessmentJSON(w http.ResponseWriter, r *http.Request) {
	raw, err := s.content.CustomPatientReport()
	if err != nil {
		slog.Error("Failed to load patient report", "error", err)
		http.Error(w, "patient report unavailable", downloadStatus(err))
		return
	}
	var buf bytes.Buffer
	if err := report.WriteJSON(&buf, raw); err != nil {
		http.Error(w, "failed to encode report", http.StatusInternalServerError)
		return
	}
	attach(w, "application/json", report.AssessmentJSONName, buf.Bytes())
}
