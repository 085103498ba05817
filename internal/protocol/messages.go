package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	TypeClientChat    MessageType = "client_chat"
	TypeClientControl MessageType = "client_control"
	TypeCoachReply    MessageType = "coach_reply"
	TypeCoachState    MessageType = "coach_state"
	TypeErrorEvent    MessageType = "error_event"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// ClientChat is one coaching question from the browser.
type ClientChat struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	GolferID  string      `json:"golfer_id,omitempty"`
	Message   string      `json:"message"`
	TSMs      int64       `json:"ts_ms,omitempty"`
}

// ClientControl carries session-level actions ("end" is the only one).
type ClientControl struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Action    string      `json:"action"`
}

// CoachReply delivers the model's answer for one turn.
type CoachReply struct {
	Type         MessageType `json:"type"`
	SessionID    string      `json:"session_id"`
	Reply        string      `json:"reply"`
	PersonaID    string      `json:"persona_id"`
	Interactions int         `json:"interactions"`
}

// CoachState is a flat snapshot of what the coach currently knows, pushed
// after each turn so the sidebar stays current without polling.
type CoachState struct {
	Type         MessageType `json:"type"`
	SessionID    string      `json:"session_id"`
	GolferID     string      `json:"golfer_id"`
	SkillLevel   string      `json:"skill_level"`
	Interactions int         `json:"interactions"`
	SwingIssues  []string    `json:"swing_issues"`
	Goals        []string    `json:"goals"`
	MemoryCount  int         `json:"memory_count"`
	InsightCount int         `json:"insight_count"`
}

type ErrorEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Code      string      `json:"code"`
	Source    string      `json:"source"`
	Retryable bool        `json:"retryable"`
	Detail    string      `json:"detail"`
}

func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeClientChat:
		var msg ClientChat
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.SessionID == "" || strings.TrimSpace(msg.Message) == "" {
			return nil, errors.New("invalid client_chat")
		}
		return msg, nil
	case TypeClientControl:
		var msg ClientControl
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.SessionID == "" || msg.Action == "" {
			return nil, errors.New("invalid client_control")
		}
		return msg, nil
	default:
		return nil, ErrUnsupportedType
	}
}
