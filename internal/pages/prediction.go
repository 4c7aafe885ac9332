package pages

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/ashureev/kneeoa/internal/content"
	"github.com/ashureev/kneeoa/internal/domain"
	"github.com/ashureev/kneeoa/internal/report"
	"github.com/ashureev/kneeoa/internal/session"
)

type paramOption struct {
	Key      string
	Label    string
	URL      string
	Selected bool
}

type paramDetail struct {
	Scalar string
	Items  []string
	JSON   string
}

type predictionBody struct {
	Params    []paramOption
	Selected  bool // a parameter was picked explicitly
	Detail    paramDetail
	Done      bool
	Intro     string
	Tables    []report.Table
	Framework *figure
}

// ParamLabel is how a parameter is listed in the picker.
func ParamLabel(p domain.PredictionParams, key string) string {
	if p.IsScalar(key) {
		return fmt.Sprintf("%s (%s)", key, p.Display(key))
	}
	return key + " (complex)"
}

func detailFor(p domain.PredictionParams, key string) paramDetail {
	if p.IsScalar(key) {
		return paramDetail{Scalar: p.Display(key)}
	}
	if items := p.Items(key); len(items) > 0 {
		return paramDetail{Items: items}
	}
	return paramDetail{JSON: p.Pretty(key)}
}

func (s *Server) prediction(w http.ResponseWriter, r *http.Request) {
	v := s.newView(r, PagePrediction)
	body := predictionBody{Framework: s.figure(v, predictingFrameworkImage, "Framework for predicting progress risks")}
	v.Body = &body

	params, err := s.content.PredictionParams()
	if err != nil {
		slog.Error("Failed to load prediction parameters", "error", err)
		v.Errors = append(v.Errors, fmt.Sprintf("Unable to load prediction parameters: %v", err))
		s.render(w, http.StatusOK, v, "prediction")
		return
	}

	picked := r.URL.Query().Get("param")
	if _, ok := params.Get(picked); ok {
		body.Selected = true
	} else if params.Len() > 0 {
		picked = params.Keys[0]
	}
	for _, key := range params.Keys {
		body.Params = append(body.Params, paramOption{
			Key:      key,
			Label:    ParamLabel(params, key),
			URL:      pageURL(PagePrediction, v.SessionID, url.Values{"param": {key}}),
			Selected: key == picked,
		})
	}
	if picked != "" {
		body.Detail = detailFor(params, picked)
	}

	st, err := s.sessions.View(r.Context(), sessionKey(r))
	if err != nil {
		slog.Error("Failed to load prediction session", "error", err)
		v.Errors = append(v.Errors, "Unable to load the session state.")
	} else if st.PredictionDone {
		tables, err := report.PredictionTables(params)
		if err != nil {
			v.Errors = append(v.Errors, fmt.Sprintf("Unable to build the prediction report: %v", err))
		} else {
			body.Done = true
			body.Intro = report.PredictionIntro
			body.Tables = tables
		}
	}

	s.render(w, http.StatusOK, v, "prediction")
}

// RunPrediction simulates the analysis and marks the prediction done.
func (s *Server) RunPrediction(w http.ResponseWriter, r *http.Request) {
	if err := s.sleep(r.Context(), s.reveal.PredictionDelay); err != nil {
		return
	}
	err := s.sessions.Do(r.Context(), sessionKey(r), func(st *session.State) error {
		st.PredictionDone = true
		return nil
	})
	if err != nil {
		slog.Error("Failed to save prediction state", "error", err)
		s.renderError(w, r, http.StatusInternalServerError, "Unable to save the prediction.")
		return
	}
	redirect(w, r, PagePrediction)
}

// PredictionPDF downloads the prediction report text as a PDF.
func (s *Server) PredictionPDF(w http.ResponseWriter, r *http.Request) {
	params, err := s.content.PredictionParams()
	if err != nil {
		slog.Error("Failed to load prediction parameters", "error", err)
		http.Error(w, "prediction parameters unavailable", downloadStatus(err))
		return
	}
	text, err := report.PredictionText(params)
	if err != nil {
		http.Error(w, "malformed prediction parameters", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := report.WritePDF(&buf, text); err != nil {
		slog.Error("Failed to render prediction PDF", "error", err)
		http.Error(w, "failed to render pdf", http.StatusInternalServerError)
		return
	}
	attach(w, "application/pdf", report.PredictionPDFName, buf.Bytes())
}

// PredictionJSON downloads the parameter document byte for byte.
func (s *Server) PredictionJSON(w http.ResponseWriter, r *http.Request) {
	data, err := s.content.Raw(content.PredictParams)
	if err != nil {
		slog.Error("Failed to load prediction parameters", "error", err)
		http.Error(w, "prediction parameters unavailable", downloadStatus(err))
		return
	}
	attach(w, "application/json", report.PredictionJSONName, data)
}
