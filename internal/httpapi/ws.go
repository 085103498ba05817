package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fairwaylabs/golfpro/internal/protocol"
	"github.com/fairwaylabs/golfpro/internal/reliability"
)

// handleChatWS serves the live chat socket behind the web UI. Turns are
// synchronous: one inbound chat message produces a coach_reply followed by
// a coach_state snapshot, all written from this goroutine so websocket
// writes stay single-threaded.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session_id", "query parameter session_id is required")
		return
	}

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadLimit(64 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Minute))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Minute))
		return nil
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Minute))
		if msgType != websocket.TextMessage {
			continue
		}

		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			s.writeWS(conn, protocol.ErrorEvent{
				Type:      protocol.TypeErrorEvent,
				SessionID: sessionID,
				Code:      "invalid_client_message",
				Source:    "gateway",
				Retryable: false,
				Detail:    err.Error(),
			})
			continue
		}

		switch msg := parsed.(type) {
		case protocol.ClientControl:
			s.metrics.WSMessages.WithLabelValues("inbound", string(protocol.TypeClientControl)).Inc()
			if msg.Action == "end" {
				if _, err := s.sessions.End(msg.SessionID); err == nil {
					s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
				}
				return
			}
		case protocol.ClientChat:
			s.metrics.WSMessages.WithLabelValues("inbound", string(protocol.TypeClientChat)).Inc()
			s.serveChatTurn(ctx, conn, sess.GolferID, msg)
		}
	}
}

func (s *Server) serveChatTurn(ctx context.Context, conn *websocket.Conn, sessionGolfer string, msg protocol.ClientChat) {
	golferID := strings.TrimSpace(msg.GolferID)
	if golferID == "" {
		golferID = sessionGolfer
	}

	reply, err := s.engine.Coach(ctx, golferID, msg.SessionID, msg.Message)
	if err != nil {
		s.writeWS(conn, protocol.ErrorEvent{
			Type:      protocol.TypeErrorEvent,
			SessionID: msg.SessionID,
			Code:      "coaching_failed",
			Source:    "coach",
			Retryable: reliability.IsRetryable(err),
			Detail:    err.Error(),
		})
		return
	}

	sess, _ := s.sessions.Get(msg.SessionID)
	personaID := s.cfg.DefaultPersona
	if sess != nil {
		personaID = sess.PersonaID
	}

	out := protocol.CoachReply{
		Type:      protocol.TypeCoachReply,
		SessionID: msg.SessionID,
		Reply:     reply,
		PersonaID: personaID,
	}

	state := protocol.CoachState{
		Type:      protocol.TypeCoachState,
		SessionID: msg.SessionID,
		GolferID:  golferID,
	}
	if p, err := s.engine.Profile(ctx, golferID); err == nil {
		out.Interactions = p.InteractionCount
		state.SkillLevel = p.SkillLevel
		state.Interactions = p.InteractionCount
		state.SwingIssues = p.SwingIssues
		state.Goals = p.Goals
	}
	if view, err := s.engine.Memory(ctx, golferID); err == nil {
		state.MemoryCount = len(view.Notes)
		state.InsightCount = len(view.Insights)
	}

	s.writeWS(conn, out)
	s.writeWS(conn, state)
}

func (s *Server) writeWS(conn *websocket.Conn, msg any) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	if err := conn.WriteJSON(msg); err != nil {
		return
	}
	if t, ok := messageTypeOf(msg); ok {
		s.metrics.WSMessages.WithLabelValues("outbound", string(t)).Inc()
	}
}

func messageTypeOf(v any) (protocol.MessageType, bool) {
	switch m := v.(type) {
	case protocol.ClientChat:
		return m.Type, true
	case protocol.ClientControl:
		return m.Type, true
	case protocol.CoachReply:
		return m.Type, true
	case protocol.CoachState:
		return m.Type, true
	case protocol.ErrorEvent:
		return m.Type, true
	default:
		return "", false
	}
}
