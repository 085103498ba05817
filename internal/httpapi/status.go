package httpapi

import (
	"net/http"

	"github.com/fairwaylabs/golfpro/internal/coach"
	"github.com/fairwaylabs/golfpro/internal/observability"
)

type statusResponse struct {
	Build            string                      `json:"build"`
	Preset           string                      `json:"preset"`
	ReflectionPeriod int                         `json:"reflection_period"`
	InsightCap       int                         `json:"insight_cap"`
	Model            string                      `json:"model"`
	DefaultPersona   string                      `json:"default_persona"`
	Personas         []coach.Persona             `json:"personas"`
	ActiveSessions   int                         `json:"active_sessions"`
	Latency          observability.StageSnapshot `json:"latency"`
}

// handleStatus reports what this instance is running: build info, the
// active coaching preset and personas, and the rolling latency window.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, statusResponse{
		Build:            s.buildInfo,
		Preset:           s.cfg.Preset,
		ReflectionPeriod: s.cfg.ReflectionPeriod,
		InsightCap:       s.cfg.InsightCap,
		Model:            s.cfg.Model,
		DefaultPersona:   s.cfg.DefaultPersona,
		Personas:         coach.Personas(),
		ActiveSessions:   s.sessions.ActiveCount(),
		Latency:          s.metrics.StageSnapshot(),
	})
}
