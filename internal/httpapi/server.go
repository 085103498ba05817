package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/fairwaylabs/golfpro/internal/coach"
	"github.com/fairwaylabs/golfpro/internal/config"
	"github.com/fairwaylabs/golfpro/internal/knowledge"
	"github.com/fairwaylabs/golfpro/internal/observability"
	"github.com/fairwaylabs/golfpro/internal/policy"
	"github.com/fairwaylabs/golfpro/internal/profile"
	"github.com/fairwaylabs/golfpro/internal/reliability"
	"github.com/fairwaylabs/golfpro/internal/session"
	"github.com/fairwaylabs/golfpro/internal/store"
)

// Engine is the slice of the coaching engine the API needs. The concrete
// implementation lives in internal/coach.
type Engine interface {
	Coach(ctx context.Context, golferID, sessionID, input string) (string, error)
	Profile(ctx context.Context, golferID string) (*profile.Profile, error)
	SetSkill(ctx context.Context, golferID, level string) (*profile.Profile, error)
	Memory(ctx context.Context, golferID string) (coach.MemoryView, error)
	LastInteraction(ctx context.Context, golferID string) (store.Interaction, error)
	SearchKnowledge(query string) []knowledge.Tip
}

type Server struct {
	cfg       config.Config
	sessions  *session.Manager
	engine    Engine
	auth      *policy.Authorizer
	metrics   *observability.Metrics
	buildInfo string
	upgrader  websocket.Upgrader
	static    http.Handler
}

func New(cfg config.Config, sessions *session.Manager, engine Engine, metrics *observability.Metrics, buildInfo string) *Server {
	return &Server{
		cfg:       cfg,
		sessions:  sessions,
		engine:    engine,
		auth:      policy.NewAuthorizer(cfg.AuthToken),
		metrics:   metrics,
		buildInfo: buildInfo,
		static:    newStaticHandler(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Default: only allow browser websocket connections from the
				// same origin, so other sites cannot drive a golfer's chat if
				// the coach is ever exposed beyond localhost.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui/", http.StatusTemporaryRedirect)
	})
	r.Get("/ui", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui/", http.StatusTemporaryRedirect)
	})
	r.Handle("/ui/*", http.StripPrefix("/ui/", s.static))

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/api/status", s.handleStatus)
		r.Post("/api/session", s.handleCreateSession)
		r.Post("/api/session/{id}/end", s.handleEndSession)
		r.Post("/api/chat", s.handleChat)
		r.Get("/ws/chat", s.handleChatWS)

		r.Get("/api/profile/{golferID}", s.handleGetProfile)
		r.Post("/api/profile/{golferID}/skill", s.handleSetSkill)
		r.Get("/api/memory/{golferID}", s.handleMemory)
		r.Get("/api/interactions/{golferID}", s.handleLastInteraction)
		r.Get("/api/knowledge", s.handleKnowledge)
		r.Get("/api/questions", s.handleQuestions)
	})

	return r
}

// requireAuth gates the coaching API behind the shared bearer token when
// one is configured.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.auth.Allow(r) {
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req session.CreateRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.GolferID) == "" {
		req.GolferID = "default"
	}
	if strings.TrimSpace(req.PersonaID) == "" {
		req.PersonaID = s.cfg.DefaultPersona
	}
	if _, err := coach.ResolvePersona(req.PersonaID); err != nil {
		respondError(w, http.StatusBadRequest, "unknown_persona", err.Error())
		return
	}

	sess := s.sessions.Create(req.GolferID, req.PersonaID)
	s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))

	respondJSON(w, http.StatusCreated, session.CreateResponse{
		SessionID:       sess.ID,
		GolferID:        sess.GolferID,
		Status:          sess.Status,
		PersonaID:       sess.PersonaID,
		StartedAt:       sess.StartedAt,
		LastActivityAt:  sess.LastActivityAt,
		InactivityTTLMS: s.cfg.SessionInactivityTimeout.Milliseconds(),
	})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "missing session id")
		return
	}

	sess, err := s.sessions.End(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
	respondJSON(w, http.StatusOK, sess)
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	GolferID  string `json:"golfer_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string           `json:"session_id"`
	Reply     string           `json:"reply"`
	Profile   *profile.Profile `json:"profile,omitempty"`
}

// handleChat runs one coaching turn over plain HTTP. The websocket path is
// preferred by the UI; this one serves curl and simple clients.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "empty_message", "message is required")
		return
	}

	golferID, err := s.resolveGolfer(req.SessionID, req.GolferID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unknown_golfer", err.Error())
		return
	}

	reply, err := s.engine.Coach(r.Context(), golferID, req.SessionID, req.Message)
	if err != nil {
		respondError(w, reliability.HTTPStatus(err), "coaching_failed", err.Error())
		return
	}

	resp := chatResponse{SessionID: req.SessionID, Reply: reply}
	if p, err := s.engine.Profile(r.Context(), golferID); err == nil {
		resp.Profile = p
	}
	respondJSON(w, http.StatusOK, resp)
}

// resolveGolfer prefers the explicit golfer id and falls back to the
// session record so websocket and HTTP chat behave the same.
func (s *Server) resolveGolfer(sessionID, golferID string) (string, error) {
	if strings.TrimSpace(golferID) != "" {
		return strings.TrimSpace(golferID), nil
	}
	if strings.TrimSpace(sessionID) != "" {
		if sess, err := s.sessions.Get(sessionID); err == nil && sess.GolferID != "" {
			return sess.GolferID, nil
		}
	}
	return "", errors.New("golfer_id is required when the session is unknown")
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

// writeDeadline bounds a single websocket write.
const writeDeadline = 10 * time.Second
