package api

import (
	"net/http"
)

func (s *Server) handleDatasets(w http.ResponseWriter, r *http.Request) {
	list, err := s.StudyService.Datasets(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, list)
}
