package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fairwaylabs/golfpro/internal/profile"
	"github.com/fairwaylabs/golfpro/internal/store"
)

func golferParam(r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "golferID"))
	return id, id != ""
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := golferParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_golfer_id", "missing golfer id")
		return
	}

	p, err := s.engine.Profile(r.Context(), id)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, p)
	case errors.Is(err, store.ErrNotFound):
		// A golfer the coach has not met yet is an empty profile, not an
		// error; the UI uses this to show the first-run skill picker.
		respondJSON(w, http.StatusOK, profile.New())
	default:
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
	}
}

type setSkillRequest struct {
	SkillLevel string `json:"skill_level"`
}

// handleSetSkill backs the first-run skill-level picker: Beginner,
// Intermediate or Advanced, written straight into the profile.
func (s *Server) handleSetSkill(w http.ResponseWriter, r *http.Request) {
	id, ok := golferParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_golfer_id", "missing golfer id")
		return
	}

	var req setSkillRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	p, err := s.engine.SetSkill(r.Context(), id, strings.ToLower(strings.TrimSpace(req.SkillLevel)))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_skill_level", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleMemory(w http.ResponseWriter, r *http.Request) {
	id, ok := golferParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_golfer_id", "missing golfer id")
		return
	}

	view, err := s.engine.Memory(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleLastInteraction(w http.ResponseWriter, r *http.Request) {
	id, ok := golferParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_golfer_id", "missing golfer id")
		return
	}

	rec, err := s.engine.LastInteraction(r.Context(), id)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, rec)
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "no_interactions", "no interactions recorded for this golfer")
	default:
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
	}
}
