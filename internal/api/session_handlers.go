package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
)

type datasetRequest struct {
	DatasetID string `json:"dataset_id"`
}

type advanceRequest struct {
	Direction string `json:"direction"`
}

type gradeRequest struct {
	Status string `json:"status"`
}

type filterRequest struct {
	Filter string `json:"filter"`
}

type cardsResponse struct {
	Cards []models.Card `json:"cards"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req datasetRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	view, err := s.StudyService.StartSession(r.Context(), req.DatasetID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("started session %s", view.SessionID)
	w.Header().Set("Location", "/api/sessions/"+view.SessionID)
	writeJSON(w, r, http.StatusAccepted, view)
}

func (s *Server) handleCurrentSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.StudyService.Current(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	s.renderView(w, r)(s.StudyService.View(r.Context(), id))
}

func (s *Server) handleSessionView(w http.ResponseWriter, r *http.Request) {
	s.renderView(w, r)(s.StudyService.View(r.Context(), sessionID(r)))
}

func (s *Server) handleLoadStatus(w http.ResponseWriter, r *http.Request) {
	s.renderView(w, r)(s.StudyService.LoadStatus(r.Context(), sessionID(r)))
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.StudyService.CloseSession(r.Context(), sessionID(r)); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	var req datasetRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	view, err := s.StudyService.Reload(r.Context(), sessionID(r), req.DatasetID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusAccepted, view)
}

func (s *Server) handleFlip(w http.ResponseWriter, r *http.Request) {
	s.renderView(w, r)(s.StudyService.Flip(r.Context(), sessionID(r)))
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	req := advanceRequest{Direction: string(models.Forward)}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	s.renderView(w, r)(s.StudyService.Advance(r.Context(), sessionID(r), req.Direction))
}

func (s *Server) handleGrade(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	s.renderView(w, r)(s.StudyService.Grade(r.Context(), sessionID(r), req.Status))
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	s.renderView(w, r)(s.StudyService.SetFilter(r.Context(), sessionID(r), req.Filter))
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	s.renderView(w, r)(s.StudyService.Press(r.Context(), sessionID(r), key))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.StudyService.Stats(r.Context(), sessionID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.StudyService.Cards(r.Context(), sessionID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cardsResponse{Cards: cards})
}

// renderView writes the result of a service call that returns a view.
func (s *Server) renderView(w http.ResponseWriter, r *http.Request) func(models.View, error) {
	return func(view models.View, err error) {
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, view)
	}
}

func sessionID(r *http.Request) string {
	return chi.URLParam(r, "id")
}
