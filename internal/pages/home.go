package pages

import "net/http"

type homeBody struct {
	Framework *figure
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	v := s.newView(r, PageHome)
	v.Body = homeBody{Framework: s.figure(v, frameworkImage, "Framework Overview")}
	s.render(w, http.StatusOK, v, "home")
}
