package httpapi

import (
	"net/http"
	"strings"

	"github.com/fairwaylabs/golfpro/internal/coach"
	"github.com/fairwaylabs/golfpro/internal/knowledge"
)

type knowledgeResponse struct {
	Query   string            `json:"query,omitempty"`
	Tips    []knowledge.Tip   `json:"tips"`
	Faults  map[string]string `json:"common_mistakes"`
	TipsLen int               `json:"tip_count"`
}

// handleKnowledge serves the shared coaching knowledge base: the static
// common-mistake descriptions plus reflection-contributed tips, optionally
// filtered by a fuzzy query.
func (s *Server) handleKnowledge(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	tips := s.engine.SearchKnowledge(query)
	respondJSON(w, http.StatusOK, knowledgeResponse{
		Query:   query,
		Tips:    tips,
		Faults:  knowledge.CommonMistakes,
		TipsLen: len(tips),
	})
}

// handleQuestions returns the starter questions shown in the UI sidebar.
func (s *Server) handleQuestions(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"questions": coach.CommonQuestions(),
	})
}
