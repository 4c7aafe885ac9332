package pages

import (
	"errors"
	"fmt"
	"net/http"
)

// Page names, exactly as they appear in the page query parameter.
const (
	PageHome       = "Home"
	PageAssessment = "Assessing Current Status"
	PagePrediction = "Predicting Progression Risk"
	PageTherapy    = "Tailored Therapy Recommendation"
)

// Pages lists the navigable pages in menu order.
var Pages = []string{PageHome, PageAssessment, PagePrediction, PageTherapy}

// ErrUnknownPage is returned by Resolve for names outside Pages.
var ErrUnknownPage = errors.New("unknown page")

// Resolve maps a page query value to a page name. The value must match a
// page name exactly; an empty value is unknown too. A request without the
// parameter never gets here and shows Home.
func Resolve(page string) (string, error) {
	for _, p := range Pages {
		if p == page {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPage, page)
}

// Route returns the handler for a page name.
func (s *Server) Route(page string) (http.HandlerFunc, bool) {
	switch page {
	case PageHome:
		return s.home, true
	case PageAssessment:
		return s.assessment, true
	case PagePrediction:
		return s.prediction, true
	case PageTherapy:
		return s.therapy, true
	default:
		return nil, false
	}
}

// Page serves GET /?page=<name>. Unknown names get a 404 error page with
// the normal navigation.
func (s *Server) Page(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("page") {
		s.home(w, r)
		return
	}
	raw := q.Get("page")
	name, err := Resolve(raw)
	if err != nil {
		s.renderError(w, r, http.StatusNotFound, fmt.Sprintf("Unknown page: %s", raw))
		return
	}
	handler, ok := s.Route(name)
	if !ok {
		s.renderError(w, r, http.StatusNotFound, fmt.Sprintf("Unknown page: %s", raw))
		return
	}
	handler(w, r)
}
